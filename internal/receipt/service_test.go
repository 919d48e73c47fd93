package receipt

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactbank/reactbank/internal/currency"
	"github.com/reactbank/reactbank/internal/receiptlog"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	return NewService(Config{
		Dir:     filepath.Join(root, "receipts"),
		LogRoot: root,
		Now:     func() time.Time { return now },
	}), root
}

func TestService_Save(t *testing.T) {
	svc, root := newTestService(t)
	rc := Build(salary(), currency.MYR, nil, generatedAt)

	path, err := svc.Save(rc, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "receipts", "receipt-123ABC-20250304050607.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "+RM 1,500.00")

	entries, err := receiptlog.Read(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, receiptlog.ActionSave, entries[0].Action)
	assert.Equal(t, rc.Number, entries[0].ReceiptNumber)
	assert.Equal(t, "text", entries[0].Format)
	assert.Equal(t, path, entries[0].Destination)
}

func TestService_SaveJSON(t *testing.T) {
	svc, _ := newTestService(t)
	path, err := svc.Save(Build(refund(), currency.MYR, nil, generatedAt), "json")
	require.NoError(t, err)
	assert.Equal(t, "receipt-789GHI-20250304050607.json", filepath.Base(path))
}

func TestService_Share(t *testing.T) {
	svc, root := newTestService(t)
	rc := Build(refund(), currency.MYR, nil, generatedAt)

	var buf bytes.Buffer
	require.NoError(t, svc.Share(&buf, rc, "text", ""))
	assert.Contains(t, buf.String(), "-RM 500.00")

	entries, err := receiptlog.Read(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, receiptlog.ActionShare, entries[0].Action)
	assert.Equal(t, "-", entries[0].Destination)
}

func TestService_UnknownFormat(t *testing.T) {
	svc, root := newTestService(t)
	rc := Build(refund(), currency.MYR, nil, generatedAt)

	_, err := svc.Save(rc, "png")
	require.ErrorIs(t, err, ErrUnknownFormat)

	err = svc.Share(&bytes.Buffer{}, rc, "pdf", "")
	require.ErrorIs(t, err, ErrUnknownFormat)

	entries, err := receiptlog.Read(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
