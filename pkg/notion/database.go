package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// QueryAll fetches every page of a database, following pagination cursors.
// Rate limiting is enforced by the Client (3 req/s by default).
func QueryAll(ctx context.Context, c Client, dbID string) ([]notionapi.Page, error) {
	var all []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{}
	for {
		resp, err := c.QueryDatabase(ctx, dbID, req)
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all")
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			return all, nil
		}
		req = &notionapi.DatabaseQueryRequest{StartCursor: resp.NextCursor}
	}
}

// ExistingLeadURLs returns the set of URL property values already present in
// the lead database, so repeated exports skip rows instead of duplicating.
func ExistingLeadURLs(ctx context.Context, c Client, dbID string) (map[string]bool, error) {
	pages, err := QueryAll(ctx, c, dbID)
	if err != nil {
		return nil, eris.Wrap(err, "notion: list existing leads")
	}

	urls := make(map[string]bool, len(pages))
	for _, p := range pages {
		if u := pageURL(p); u != "" {
			urls[u] = true
		}
	}
	return urls, nil
}

// pageURL extracts the URL property. The API decodes properties as pointer
// types; pages built in-process carry value types, so handle both.
func pageURL(p notionapi.Page) string {
	switch prop := p.Properties["URL"].(type) {
	case *notionapi.URLProperty:
		return prop.URL
	case notionapi.URLProperty:
		return prop.URL
	default:
		return ""
	}
}
