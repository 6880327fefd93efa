package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sample = Dataset{
	Headers: []string{"Aluno", "Status"},
	Rows: []map[string]string{
		{"Aluno": "Ana", "Status": "PAGO"},
		{"Aluno": "Bruno", "Status": "PENDENTE"},
	},
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample)
	require.NoError(t, err)
	assert.Equal(t, "Aluno,Status\nAna,PAGO\nBruno,PENDENTE\n", string(out))
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sample, "Mensalidades 3/2026")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sample, "Chamadas")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := f.GetRows("Chamadas")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Aluno", "Status"}, rows[0])
	assert.Equal(t, []string{"Ana", "PAGO"}, rows[1])
}
