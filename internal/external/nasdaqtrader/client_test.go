package nasdaqtrader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/httputil"
	"github.com/wonny/schloss/pkg/logger"
)

const listed = `Symbol|Security Name|Market Category|Test Issue|Financial Status|Round Lot Size|ETF|NextShares
AAPL|Apple Inc. - Common Stock|Q|N|N|100|N|N
ZXZZT|NASDAQ TEST STOCK|G|Y|N|100|N|N
GOOGL|Alphabet Inc. - Class A Common Stock|Q|N|N|100|N|N
ABC.W|Some "Quoted" Warrant|S|N|N|100|N|N
File Creation Time: 1018202621:32|||||||
`

func TestParseListed(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []contracts.TickerSymbol
		wantErr bool
	}{
		{
			name: "directory with test issue and footer",
			data: listed,
			want: []contracts.TickerSymbol{"AAPL", "GOOGL", "ABC-W"},
		},
		{
			name: "header only",
			data: "Symbol|Security Name|Test Issue\n",
			want: nil,
		},
		{
			name:    "empty file",
			data:    "",
			wantErr: true,
		},
		{
			name:    "missing symbol column",
			data:    "Ticker|Name\nAAPL|Apple\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseListed([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConstituents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listed))
	}))
	defer server.Close()

	c := NewClient(httputil.New(logger.Nop()), server.URL+"/dynamic/SymDir/nasdaqlisted.txt", logger.Nop())
	assert.Equal(t, "nasdaq", c.Name())

	got, err := c.Constituents(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
