// Package sheets stores ledger tables in Google Sheets spreadsheets. A table
// id is a spreadsheet id and a region is a sheet name.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/MrJamesThe3rd/chatledger/internal/retry"
	"github.com/MrJamesThe3rd/chatledger/internal/table"
)

// Config selects the credentials. A service account key takes precedence
// over an OAuth2 refresh token.
type Config struct {
	ServiceAccountPath string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
}

func (c Config) Validate() error {
	if c.ServiceAccountPath != "" {
		return nil
	}

	if c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "" {
		return errors.New("either a service account key or client id, secret and refresh token are required")
	}

	return nil
}

// NewService builds an authenticated Sheets client.
func NewService(ctx context.Context, cfg Config) (*sheets.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sheets config: %w", err)
	}

	var tokenSource oauth2.TokenSource

	if cfg.ServiceAccountPath != "" {
		key, err := os.ReadFile(cfg.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("read service account key: %w", err)
		}

		jwt, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse service account key: %w", err)
		}

		tokenSource = jwt.TokenSource(ctx)
	} else {
		conf := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		tokenSource = conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken, TokenType: "Bearer"})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return srv, nil
}

// Store implements table.Store on top of the Sheets values API.
type Store struct {
	srv   *sheets.Service
	retry retry.Options
}

func New(srv *sheets.Service, opts retry.Options) *Store {
	return &Store{srv: srv, retry: opts}
}

func (s *Store) ReadRows(ctx context.Context, spreadsheetID, region, columns string) ([]table.Row, error) {
	var resp *sheets.ValueRange

	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		var err error

		resp, err = s.srv.Spreadsheets.Values.Get(spreadsheetID, a1(region, columns)).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("FORMATTED_STRING").
			Context(ctx).
			Do()

		return classify(err)
	})
	if err != nil {
		return nil, fmt.Errorf("get values %s: %w", region, err)
	}

	cells := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells = append(cells, cellStrings(row))
	}

	return table.Rows(cells), nil
}

func (s *Store) AppendRows(ctx context.Context, spreadsheetID, region, columns string, rows [][]string) error {
	values := make([][]any, 0, len(rows))

	for _, row := range rows {
		cells := make([]any, 0, len(row))
		for _, c := range row {
			cells = append(cells, c)
		}

		values = append(values, cells)
	}

	vr := &sheets.ValueRange{MajorDimension: "ROWS", Values: values}

	// Transport errors are not retried: the append may have landed.
	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		_, err := s.srv.Spreadsheets.Values.Append(spreadsheetID, a1(region, columns), vr).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()

		var apiErr *googleapi.Error
		if err != nil && !errors.As(err, &apiErr) {
			return retry.Permanent(err)
		}

		return classify(err)
	})
	if err != nil {
		return fmt.Errorf("append values %s: %w", region, err)
	}

	return nil
}

// a1 builds an A1 range such as 'Referência'!A:G.
func a1(region, columns string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(region, "'", "''"), columns)
}

// classify marks errors that another attempt cannot fix as permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusNotFound:
		return retry.Permanent(fmt.Errorf("%w: %w", table.ErrRegionNotFound, err))
	case apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range"):
		return retry.Permanent(fmt.Errorf("%w: %w", table.ErrRegionNotFound, err))
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError:
		return err
	default:
		return retry.Permanent(err)
	}
}

func cellStrings(row []any) []string {
	out := make([]string, 0, len(row))

	for _, v := range row {
		switch c := v.(type) {
		case string:
			out = append(out, c)
		case float64:
			out = append(out, strconv.FormatFloat(c, 'f', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(c))
		case nil:
			out = append(out, "")
		default:
			out = append(out, fmt.Sprint(c))
		}
	}

	return out
}
