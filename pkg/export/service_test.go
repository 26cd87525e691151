package export

import (
	"context"
	"encoding/csv"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/localstore"
	"github.com/dmaldonado/nestdesk/pkg/logger"
	"github.com/dmaldonado/nestdesk/pkg/workspace"
)

func testWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	local, err := localstore.Open(t.TempDir() + "/cache.db")
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	w := workspace.New(&crm.User{ID: "u1", Name: "Dana Reyes"}, nil, nil, local, logger.Nop())
	require.NoError(t, w.Load(context.Background()))
	return w
}

func sampleContacts() []crm.Contact {
	stage := crm.StageShowing
	value := 450000.0
	return []crm.Contact{
		{
			ID: "c1", FirstName: "Noor", LastName: "Haddad", Email: "noor@example.com",
			Phone: "(212) 555-0123", Temperature: crm.TemperatureHot,
			LeadSource: "referral", DealStage: &stage, DealValue: &value,
			LastContact: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			CreatedAt:   time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID: "c2", FirstName: "Sam", LastName: "Okafor", Temperature: crm.TemperatureWarm,
			LastContact: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			CreatedAt:   time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC),
		},
	}
}

func TestExportCSV(t *testing.T) {
	service := NewService(t.TempDir())

	path, err := service.ExportCSV("u1", sampleContacts())
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, contactHeader, records[0])
	assert.Equal(t, "Noor", records[1][0])
	assert.Equal(t, "showing", records[1][7])
	assert.Equal(t, "450000.00", records[1][8])
	assert.Equal(t, "", records[2][7])
}

func TestExportXLSX(t *testing.T) {
	service := NewService(t.TempDir())

	path, err := service.ExportXLSX("u1", sampleContacts())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".xlsx"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestImportCSV(t *testing.T) {
	service := NewService(t.TempDir())
	w := testWorkspace(t)
	before := len(w.Snapshot().Contacts)

	input := strings.Join([]string{
		"First Name,Last Name,Email,Temperature,Deal Stage,Deal Value",
		"Ines,Morales,ines@example.com,hot,offer,380000",
		",Smith,missing@example.com,warm,,",
		"Theo,Park,theo@example.com,cold,not-a-stage,",
	}, "\n")

	result, err := service.ImportCSV(context.Background(), w, strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.FailureCount)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)

	contacts := w.Snapshot().Contacts
	require.Len(t, contacts, before+1)
	imported := contacts[0]
	assert.Equal(t, "Ines", imported.FirstName)
	require.NotNil(t, imported.DealStage)
	assert.Equal(t, crm.StageOffer, *imported.DealStage)
	require.NotNil(t, imported.DealValue)
	assert.Equal(t, 380000.0, *imported.DealValue)
}

func TestImportCSVMissingRequiredColumn(t *testing.T) {
	service := NewService(t.TempDir())
	w := testWorkspace(t)

	_, err := service.ImportCSV(context.Background(), w, strings.NewReader("Email\nx@example.com\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firstName")
}
