package sheets_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/MrJamesThe3rd/chatledger/internal/retry"
	"github.com/MrJamesThe3rd/chatledger/internal/table"
	"github.com/MrJamesThe3rd/chatledger/internal/table/sheets"
)

var fast = retry.Options{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

func newStore(t *testing.T, handler http.HandlerFunc) *sheets.Store {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := gsheets.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	return sheets.New(srv, fast)
}

func TestStore_ReadRows(t *testing.T) {
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v4/spreadsheets/sheet-1/values/'Telegram'!A:B", r.URL.Path)
		assert.Equal(t, "UNFORMATTED_VALUE", r.URL.Query().Get("valueRenderOption"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Telegram!A1:B3","majorDimension":"ROWS","values":[["MsgId","Status"],[101,"SUCCESS"],[102]]}`))
	})

	rows, err := store.ReadRows(context.Background(), "sheet-1", "Telegram", "A:B")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "101", rows[0].Get("MsgId"))
	assert.Equal(t, "SUCCESS", rows[0].Get("Status"))
	assert.Equal(t, "", rows[1].Get("Status"))
}

func TestStore_ReadRowsRetriesServerErrors(t *testing.T) {
	calls := 0

	store := newStore(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, `{"error":{"code":503,"message":"backend"}}`, http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"values":[["Conta","Tipo"],["Nubank","Liability"]]}`))
	})

	rows, err := store.ReadRows(context.Background(), "sheet-1", "Contas", "B2:C999")
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, "Nubank", rows[0].Get("Conta"))
}

func TestStore_ReadRowsMissingSheet(t *testing.T) {
	calls := 0

	store := newStore(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Unable to parse range: Nope!A:B"}}`))
	})

	_, err := store.ReadRows(context.Background(), "sheet-1", "Nope", "A:B")

	assert.ErrorIs(t, err, table.ErrRegionNotFound)
	assert.Equal(t, 1, calls)
}

func TestStore_AppendRows(t *testing.T) {
	var got gsheets.ValueRange

	store := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/values/'Referência'!A:G:append"), r.URL.Path)
		assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
		assert.Equal(t, "INSERT_ROWS", r.URL.Query().Get("insertDataOption"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","updates":{"updatedRows":1}}`))
	})

	err := store.AppendRows(context.Background(), "sheet-1", "Referência", "A:G", [][]string{{"Apple", "52", "100", "g"}})
	require.NoError(t, err)

	require.Len(t, got.Values, 1)
	assert.Equal(t, []any{"Apple", "52", "100", "g"}, got.Values[0])
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, sheets.Config{ServiceAccountPath: "key.json"}.Validate())
	assert.NoError(t, sheets.Config{ClientID: "id", ClientSecret: "secret", RefreshToken: "token"}.Validate())
	assert.Error(t, sheets.Config{ClientID: "id"}.Validate())
}
