package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		mockSearch := &mockSearchService{
			results: []domain.SearchResult{
				{
					Document: domain.SearchDocument{
						ID:        "member:wardens:sergeant",
						Title:     "Warden Sergeant",
						Type:      domain.DocumentTypeMember,
						GroupID:   "wardens",
						GroupName: "Void Wardens",
						Anchor:    "warden-sergeant",
						Body:      "Leads the squad.",
					},
					Score: 2.5,
					Match: domain.MatchToken,
				},
			},
		}

		ports := &Ports{Search: mockSearch}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "sergeant", Limit: 10}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "member:wardens:sergeant", output.Results[0].DocumentID)
		assert.Equal(t, "Warden Sergeant", output.Results[0].Title)
		assert.Equal(t, "member", output.Results[0].Type)
		assert.Equal(t, "Void Wardens", output.Results[0].Unit)
		assert.Equal(t, "warden-sergeant", output.Results[0].Anchor)
		assert.Equal(t, 2.5, output.Results[0].Score)
		assert.Equal(t, "token", output.Results[0].Match)
		assert.Equal(t, "Leads the squad.", output.Results[0].Content)
	})

	t.Run("default limit is 10", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "cover"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, 10, mockSearch.lastOpts.Limit)
	})

	t.Run("passes type and unit filters", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		input := SearchInput{Query: "dash", Limit: 3, Types: []string{"action", "ploy"}, Unit: "wardens"}
		_, _, err = server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 3, mockSearch.lastOpts.Limit)
		assert.Equal(t, "wardens", mockSearch.lastOpts.GroupID)
		assert.Equal(t, []domain.DocumentType{domain.DocumentTypeAction, domain.DocumentTypePloy}, mockSearch.lastOpts.Types)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockSearch := &mockSearchService{err: domain.ErrInvalidInput}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "x", Types: []string{"bogus"}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleGetDocument(t *testing.T) {
	ctx := context.Background()
	mockSearch := &mockSearchService{
		docs: map[string]domain.SearchDocument{
			"rule:cover": {ID: "rule:cover", Title: "Cover", Type: domain.DocumentTypeRule},
		},
	}
	server, err := NewServer(&Ports{Search: mockSearch})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		_, doc, err := server.handleGetDocument(ctx, nil, GetDocumentInput{ID: "rule:cover"})
		require.NoError(t, err)
		assert.Equal(t, "Cover", doc.Title)
	})

	t.Run("missing", func(t *testing.T) {
		_, _, err := server.handleGetDocument(ctx, nil, GetDocumentInput{ID: "rule:none"})
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestServer_handleCheckUpdates(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		locale     string
		wantLocale string
	}{
		{name: "configured locale when none given", locale: "", wantLocale: "de"},
		{name: "requested locale wins", locale: "fr", wantLocale: "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates := &mockUpdateService{
				result: domain.SyncResult{Updated: true, Version: "v3", Changed: []string{"items"}},
			}
			server, err := NewServer(&Ports{Search: &mockSearchService{}, Updates: updates, Locale: "de"})
			require.NoError(t, err)

			_, result, err := server.handleCheckUpdates(ctx, nil, UpdateInput{Locale: tt.locale})

			require.NoError(t, err)
			assert.True(t, result.Updated)
			assert.Equal(t, "v3", result.Version)
			assert.Equal(t, []string{tt.wantLocale}, updates.locales)
		})
	}

	t.Run("storage failure is a tool error", func(t *testing.T) {
		updates := &mockUpdateService{err: errors.New("disk full")}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Updates: updates})
		require.NoError(t, err)

		_, _, err = server.handleCheckUpdates(ctx, nil, UpdateInput{})
		assert.EqualError(t, err, "disk full")
	})

	t.Run("no update service", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		_, _, err = server.handleCheckUpdates(ctx, nil, UpdateInput{})
		assert.ErrorIs(t, err, errUpdatesUnavailable)
	})
}

func TestServer_handleForceRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("failure is reported in the result", func(t *testing.T) {
		updates := &mockUpdateService{force: domain.ForceResult{OK: false, Error: "units: not found"}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Updates: updates, Locale: "en"})
		require.NoError(t, err)

		_, result, err := server.handleForceRefresh(ctx, nil, UpdateInput{})

		require.NoError(t, err)
		assert.False(t, result.OK)
		assert.Equal(t, "units: not found", result.Error)
		assert.Equal(t, []string{"en"}, updates.locales)
	})

	t.Run("success", func(t *testing.T) {
		updates := &mockUpdateService{force: domain.ForceResult{OK: true, Version: "v4"}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Updates: updates})
		require.NoError(t, err)

		_, result, err := server.handleForceRefresh(ctx, nil, UpdateInput{Locale: "es"})

		require.NoError(t, err)
		assert.True(t, result.OK)
		assert.Equal(t, "v4", result.Version)
	})

	t.Run("no update service", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		_, _, err = server.handleForceRefresh(ctx, nil, UpdateInput{})
		assert.ErrorIs(t, err, errUpdatesUnavailable)
	})
}
