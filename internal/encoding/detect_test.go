package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/chatledger/internal/encoding"
)

const export = "id;date;chat_id;reply_to;text\n1;2024-01-05T12:00:00Z;-100;;Pão de queijo - 2 un\n"

func TestNewUTF8Reader(t *testing.T) {
	type testCase struct {
		name        string
		input       []byte
		wantCharset encoding.Charset // empty when the heuristic may pick either Latin charset
		want        string
	}

	tests := []testCase{
		{
			name:        "UTF8 Passthrough",
			input:       []byte(export),
			wantCharset: encoding.UTF8,
			want:        export,
		},
		{
			name:        "UTF8 BOM Is Stripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, []byte("Açaí - 200g\n")...),
			wantCharset: encoding.UTF8BOM,
			want:        "Açaí - 200g\n",
		},
		{
			name: "Latin1 Is Decoded",
			// "Pão - 1 un\n" in Windows-1252: ã = 0xE3
			input: []byte{'P', 0xE3, 'o', ' ', '-', ' ', '1', ' ', 'u', 'n', '\n'},
			want:  "Pão - 1 un\n",
		},
		{
			name: "UTF16LE With BOM",
			// "Oi\n" in UTF-16 LE.
			input:       []byte{0xFF, 0xFE, 'O', 0x00, 'i', 0x00, '\n', 0x00},
			wantCharset: encoding.UTF16LE,
			want:        "Oi\n",
		},
		{
			name:        "Empty Input",
			input:       nil,
			wantCharset: encoding.UTF8,
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(tt.input))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)

			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, charset)
			}

			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestNewUTF8Reader_LargeInput(t *testing.T) {
	input := bytes.Repeat([]byte("Café - 1 xícara\n"), 1000)

	r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.Equal(t, encoding.UTF8, charset)
	assert.Equal(t, input, got)
}
