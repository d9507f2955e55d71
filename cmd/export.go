package main

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitescout/sitescout/internal/model"
	"github.com/sitescout/sitescout/internal/report"
	notionpkg "github.com/sitescout/sitescout/pkg/notion"
)

var (
	exportXLSX   string
	exportNotion bool
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scored leads to XLSX or Notion",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if exportXLSX == "" && !exportNotion {
			return eris.New("nothing to do, pass --xlsx and/or --notion")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		ranked, err := st.ListLeads(ctx, exportLimit)
		if err != nil {
			return eris.Wrap(err, "list leads")
		}
		if len(ranked) == 0 {
			return eris.New("no scored leads to export, run 'leads score' first")
		}

		if exportXLSX != "" {
			if err := report.WriteLeadsXLSX(exportXLSX, ranked); err != nil {
				return err
			}
			fmt.Printf("wrote %d leads to %s\n", len(ranked), exportXLSX)
		}

		if exportNotion {
			if cfg.Notion.Token == "" || cfg.Notion.LeadDB == "" {
				return eris.New("notion export needs notion.token and notion.lead_db configured")
			}
			client := notionpkg.NewClient(cfg.Notion.Token)
			created, skipped, err := exportLeadsToNotion(ctx, client, cfg.Notion.LeadDB, ranked)
			if err != nil {
				return err
			}
			fmt.Printf("created %d lead pages in Notion, skipped %d already exported\n", created, skipped)
		}

		return nil
	},
}

// exportLeadsToNotion creates a page per lead, skipping URLs that already
// have a page in the database so reruns don't duplicate rows.
func exportLeadsToNotion(ctx context.Context, client notionpkg.Client, dbID string, ranked []model.Lead) (created, skipped int, err error) {
	existing, err := notionpkg.ExistingLeadURLs(ctx, client, dbID)
	if err != nil {
		return 0, 0, err
	}

	for _, l := range ranked {
		if existing[l.URL] {
			skipped++
			zap.L().Debug("lead already in notion", zap.String("name", l.Name))
			continue
		}

		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: notionapi.Properties{
				"Name": notionapi.TitleProperty{
					Type: notionapi.PropertyTypeTitle,
					Title: []notionapi.RichText{
						{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: l.Name}},
					},
				},
				"URL": notionapi.URLProperty{
					Type: notionapi.PropertyTypeURL,
					URL:  l.URL,
				},
				"Score": notionapi.NumberProperty{
					Type:   notionapi.PropertyTypeNumber,
					Number: l.Score,
				},
				"Velocity": notionapi.NumberProperty{
					Type:   notionapi.PropertyTypeNumber,
					Number: l.Velocity,
				},
				"Authority": notionapi.NumberProperty{
					Type:   notionapi.PropertyTypeNumber,
					Number: l.Authority,
				},
				"Impact": notionapi.NumberProperty{
					Type:   notionapi.PropertyTypeNumber,
					Number: l.Impact,
				},
			},
		}

		if _, err := client.CreatePage(ctx, req); err != nil {
			return created, skipped, eris.Wrapf(err, "create notion page for %q", l.Name)
		}
		created++
		zap.L().Debug("lead exported to notion", zap.String("name", l.Name))
	}

	return created, skipped, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportXLSX, "xlsx", "", "write leads to this XLSX file")
	exportCmd.Flags().BoolVar(&exportNotion, "notion", false, "create lead pages in the configured Notion database")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 100, "max leads to export")
	rootCmd.AddCommand(exportCmd)
}
