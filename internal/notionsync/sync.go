// Package notionsync exports ledger transactions to a Notion database.
package notionsync

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"

	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/logger"
)

// pageSize is the Notion maximum for database queries.
const pageSize = 100

// Options select the rows to export.
type Options struct {
	From   civil.Date
	To     civil.Date
	DryRun bool
}

// Result counts what a sync did, or would do in dry-run mode.
type Result struct {
	Total   int
	Created int
	Skipped int
	Failed  int
}

// SyncLedger creates a Notion page for every ledger row in the range whose
// fingerprint is not already present in the database. Pages are never
// updated or deleted. A failed page is logged and counted; the sync goes on.
func SyncLedger(ctx context.Context, store ledger.TransactionStore, client NotionService, databaseID string, opts Options) (Result, error) {
	log := logger.FromContext(ctx)
	var res Result

	log.Info().
		Str("from", opts.From.String()).
		Str("to", opts.To.String()).
		Bool("dry_run", opts.DryRun).
		Msg("Starting ledger sync to Notion")

	txs, err := store.QueryTransactions(ctx, ledger.Filter{From: opts.From, To: opts.To})
	if err != nil {
		return res, fmt.Errorf("SyncLedger: query ledger: %w", err)
	}
	res.Total = len(txs)

	pages, err := queryAllNotionPages(ctx, client, databaseID)
	if err != nil {
		return res, fmt.Errorf("SyncLedger: %w", err)
	}
	existing := make(map[string]bool, len(pages))
	for _, p := range pages {
		if fp := fingerprintOf(p); fp != "" {
			existing[fp] = true
		}
	}
	log.Info().Int("transactions", len(txs)).Int("notion_pages", len(pages)).Msg("Loaded ledger and Notion state")

	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("SyncLedger: %w", err)
		}
		if existing[tx.Fingerprint] {
			res.Skipped++
			continue
		}
		if opts.DryRun {
			log.Info().Str("fingerprint", tx.Fingerprint).Str("description", tx.Description).Msg("[DRY RUN] Would create Notion page")
			res.Created++
			continue
		}

		page, err := client.CreatePage(ctx, databaseID, TransactionToNotionProperties(tx))
		if err != nil {
			log.Warn().Err(err).Str("fingerprint", tx.Fingerprint).Msg("Failed to create Notion page")
			res.Failed++
			continue
		}
		res.Created++
		log.Debug().Str("fingerprint", tx.Fingerprint).Str("page_id", string(page.ID)).Msg("Created Notion page")
	}

	log.Info().
		Int("total", res.Total).
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("Ledger sync finished")
	return res, nil
}

func queryAllNotionPages(ctx context.Context, client NotionService, databaseID string) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: pageSize}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := client.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}
		all = append(all, resp.Results...)

		if !resp.HasMore {
			return all, nil
		}
		cursor = resp.NextCursor
	}
}
