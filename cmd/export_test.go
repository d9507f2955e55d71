package main

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitescout/sitescout/internal/model"
)

type fakeNotion struct {
	existing []notionapi.Page
	queryErr error
	created  []*notionapi.PageCreateRequest
}

func (f *fakeNotion) CreatePage(_ context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	f.created = append(f.created, req)
	return &notionapi.Page{ID: "new-page"}, nil
}

func (f *fakeNotion) QueryDatabase(_ context.Context, _ string, _ *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &notionapi.DatabaseQueryResponse{Results: f.existing, HasMore: false}, nil
}

func TestExportLeadsToNotion_SkipsExisting(t *testing.T) {
	t.Parallel()

	fake := &fakeNotion{existing: []notionapi.Page{
		{
			ID: "p1",
			Properties: notionapi.Properties{
				"URL": &notionapi.URLProperty{Type: notionapi.PropertyTypeURL, URL: "https://acme.com"},
			},
		},
	}}

	ranked := []model.Lead{
		{Name: "Acme", URL: "https://acme.com", Score: 70},
		{Name: "Globex", URL: "https://globex.com", Score: 55},
	}

	created, skipped, err := exportLeadsToNotion(context.Background(), fake, "db-leads", ranked)

	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, skipped)
	require.Len(t, fake.created, 1)

	req := fake.created[0]
	assert.Equal(t, notionapi.DatabaseID("db-leads"), req.Parent.DatabaseID)
	urlProp, ok := req.Properties["URL"].(notionapi.URLProperty)
	require.True(t, ok)
	assert.Equal(t, "https://globex.com", urlProp.URL)
	titleProp, ok := req.Properties["Name"].(notionapi.TitleProperty)
	require.True(t, ok)
	require.Len(t, titleProp.Title, 1)
	assert.Equal(t, "Globex", titleProp.Title[0].Text.Content)
}

func TestExportLeadsToNotion_RerunCreatesNothing(t *testing.T) {
	t.Parallel()

	fake := &fakeNotion{existing: []notionapi.Page{
		{ID: "p1", Properties: notionapi.Properties{
			"URL": &notionapi.URLProperty{Type: notionapi.PropertyTypeURL, URL: "https://acme.com"},
		}},
	}}

	created, skipped, err := exportLeadsToNotion(context.Background(), fake, "db-leads", []model.Lead{
		{Name: "Acme", URL: "https://acme.com", Score: 70},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 1, skipped)
	assert.Empty(t, fake.created)
}

func TestExportLeadsToNotion_QueryError(t *testing.T) {
	t.Parallel()

	fake := &fakeNotion{queryErr: eris.New("unauthorized")}

	_, _, err := exportLeadsToNotion(context.Background(), fake, "db-leads", []model.Lead{
		{Name: "Acme", URL: "https://acme.com"},
	})

	require.Error(t, err)
	assert.Empty(t, fake.created)
}
