package importer

import (
	"bytes"
	"strings"
	"testing"

	"loyalty-wallet/internal/domain/members"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	input := "\ufeffCliente,Campaña,Nombre,Email,Tipo Cliente,Puntos\n" +
		"C1,spring,Ana,ANA@Example.com,Gold 15%,120\n" +
		",spring,NoClient,,,\n" +
		"C2,spring,Luis,,blue,abc\n"

	b, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, b.Rows, 2)
	assert.Equal(t, Row{
		Line: 2, Client: "C1", Campaign: "spring", Name: "Ana", Email: "ana@example.com",
		CustomerType: "Gold 15%", Points: points(120),
	}, b.Rows[0])
	assert.Equal(t, "C2", b.Rows[1].Client)
	assert.Nil(t, b.Rows[1].Points)

	assert.Equal(t, 1, b.Skipped)
	require.Len(t, b.Errors, 2)
	assert.Contains(t, b.Errors[0], "line 3")
	assert.Contains(t, b.Errors[1], "invalid points")
}

func TestParseCSVMissingColumns(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("name,email\nAna,a@x\n"))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"client", "campaign", "external_id", "customer_type"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"C1", "spring", "ext-1", "GOLD"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"C2", "spring", "", "blue"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	b, err := Parse("members.XLSX", &buf)
	require.NoError(t, err)
	require.Len(t, b.Rows, 2)
	assert.Equal(t, "ext-1", b.Rows[0].ExternalID)
	assert.Equal(t, "GOLD", b.Rows[0].CustomerType)
	assert.Equal(t, "C2", b.Rows[1].Client)
}

func TestNewMemberGeneratesExternalID(t *testing.T) {
	m := NewMember(Row{Client: "C1", Campaign: "spring"})
	assert.NotEmpty(t, m.ExternalID)

	m = NewMember(Row{Client: "C1", Campaign: "spring", ExternalID: "ext-1"})
	assert.Equal(t, "ext-1", m.ExternalID)
}

func TestMergeKeepsStoredValuesForBlankCells(t *testing.T) {
	m := members.Member{Client: "C1", Campaign: "spring", Name: "Ana", Email: "ana@x.com", CustomerType: "blue", Points: 10}

	Merge(&m, Row{Client: "C1", Campaign: "spring", CustomerType: "Gold 15%"})

	assert.Equal(t, "Ana", m.Name)
	assert.Equal(t, "ana@x.com", m.Email)
	assert.Equal(t, "Gold 15%", m.CustomerType)
	assert.Equal(t, 10, m.Points)
}

func TestMergeZeroPointsResets(t *testing.T) {
	m := members.Member{Client: "C1", Campaign: "spring", Points: 10}

	Merge(&m, Row{Client: "C1", Campaign: "spring", Points: points(0)})

	assert.Equal(t, 0, m.Points)
}

func TestParseCSVZeroPointsIsPresent(t *testing.T) {
	b, err := ParseCSV(strings.NewReader("client,campaign,points\nC1,spring,0\nC2,spring,\n"))
	require.NoError(t, err)
	require.Len(t, b.Rows, 2)

	require.NotNil(t, b.Rows[0].Points)
	assert.Equal(t, 0, *b.Rows[0].Points)
	assert.Nil(t, b.Rows[1].Points)
}

func points(n int) *int { return &n }

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []members.Member{
		{Client: "C1", Campaign: "spring", ExternalID: "e1", Name: "Ana", CustomerType: "Gold 15%", Points: 5},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(ExportHeader, ","), lines[0])
	assert.Equal(t, "C1,spring,e1,Ana,,,,Gold 15%,5,gold", lines[1])
}
