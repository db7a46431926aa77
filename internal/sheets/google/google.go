// Package google writes the ledger mirror into a Google Sheet using a
// service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"carteira/internal/core"
	ports "carteira/internal/sheets"
)

var _ ports.LedgerWriter = (*Client)(nil)

type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string

	// writeMu spans locating a row and writing it: a delete shifts every
	// row below it.
	writeMu sync.Mutex

	// uuid → 1-based row, read from column G.
	mu                 sync.Mutex
	rowIndex           map[string]int
	cachedRowCount     int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
	sheetID            *int64
}

// New builds a client from service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheet string) *Client {
	if sheet == "" {
		sheet = "Lancamentos"
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		sheet:              sheet,
		cacheValidDuration: 5 * time.Minute,
	}
}

// newSheetsService prefers inline JSON, then a file path, then
// GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string) (*gsheet.Service, error) {
	credentialsJSON = strings.TrimSpace(credentialsJSON)
	credentialsFile = strings.TrimSpace(credentialsFile)
	if credentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var raw []byte
	switch {
	case credentialsJSON != "":
		raw = []byte(credentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		raw = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(raw),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "credentials_size", len(raw))
	return svc, nil
}

func (c *Client) AppendEntry(ctx context.Context, e core.LedgerEntry) (string, error) {
	if e.UUID == "" {
		return "", errors.New("ledger entry without uuid")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	row, err := c.findRow(ctx, e.UUID)
	if err != nil {
		return "", err
	}

	values := toValues(ports.Row(e))
	if row > 0 {
		rng := fmt.Sprintf("%s!A%d:G%d", c.sheet, row, row)
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{values}}).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("update %s: %w", rng, err)
		}
		return rng, nil
	}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheet+"!A:G", &gsheet.ValueRange{Values: [][]any{values}}).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c.sheet, err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	c.mu.Lock()
	if n, ok := rowFromRange(ref); ok && c.rowIndex != nil {
		c.rowIndex[e.UUID] = n
		c.cachedRowCount = max(c.cachedRowCount, n)
	} else {
		c.cacheExpiresAt = time.Time{}
	}
	c.mu.Unlock()
	return ref, nil
}

func (c *Client) DeleteEntry(ctx context.Context, uuid string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	row, err := c.findRow(ctx, uuid)
	if err != nil || row == 0 {
		return err
	}
	sheetID, err := c.lookupSheetID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:    sheetID,
			Dimension:  "ROWS",
			StartIndex: int64(row - 1),
			EndIndex:   int64(row),
		}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d: %w", row, err)
	}
	// Rows below shifted up.
	c.invalidateRowCache()
	return nil
}

// findRow returns the 1-based row holding uuid, or 0.
func (c *Client) findRow(ctx context.Context, uuid string) (int, error) {
	c.mu.Lock()
	if c.rowIndex != nil && time.Now().Before(c.cacheExpiresAt) {
		row := c.rowIndex[uuid]
		c.mu.Unlock()
		return row, nil
	}
	c.mu.Unlock()

	rng := c.sheet + "!G:G"
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	index := make(map[string]int, len(resp.Values))
	for i, r := range resp.Values {
		if len(r) == 0 {
			continue
		}
		if id := strings.TrimSpace(fmt.Sprint(r[0])); id != "" {
			index[id] = i + 1
		}
	}

	c.mu.Lock()
	c.rowIndex = index
	c.cachedRowCount = len(resp.Values)
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()
	return index[uuid], nil
}

func (c *Client) invalidateRowCache() {
	c.mu.Lock()
	c.rowIndex = nil
	c.cachedRowCount = 0
	c.cacheExpiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *Client) lookupSheetID(ctx context.Context) (int64, error) {
	c.mu.Lock()
	if c.sheetID != nil {
		id := *c.sheetID
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheet {
			id := s.Properties.SheetId
			c.mu.Lock()
			c.sheetID = &id
			c.mu.Unlock()
			return id, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", c.sheet)
}

func toValues(cols []string) []any {
	out := make([]any, len(cols))
	for i, v := range cols {
		out[i] = v
	}
	return out
}

// rowFromRange extracts the row of a single-row A1 range like "S!A5:G5".
func rowFromRange(rng string) (int, bool) {
	i := strings.LastIndex(rng, ":")
	if i < 0 {
		return 0, false
	}
	cell := rng[i+1:]
	j := strings.IndexFunc(cell, func(r rune) bool { return r >= '0' && r <= '9' })
	if j < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(cell[j:])
	return n, err == nil
}
