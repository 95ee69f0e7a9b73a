package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statementOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>021000021
<ACCTID>99001
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240301120000[0:GMT]
<TRNAMT>2500.00
<FITID>S-1
<NAME>PAYROLL DEPOSIT
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240302120000[0:GMT]
<TRNAMT>-6.20
<FITID>S-2
<NAME>POS PURCHASE CORNER COFFEE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>2493.80
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestImportCmd_Idempotent(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "march.qfx", statementOFX)
	db := filepath.Join(dir, "test.db")

	out, err := executeCommand(t, "--db", db, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "2 transactions parsed, 2 imported, 0 already present")

	out, err = executeCommand(t, "--db", db, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "2 transactions parsed, 0 imported, 2 already present")

	out, err = executeCommand(t, "--db", db, "transactions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "CORNER COFFEE")
	assert.Contains(t, out, "2 transactions")
	assert.Contains(t, out, "balance $2493.80")
}

func TestImportCmd_DryRun(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "march.qfx", statementOFX)
	db := filepath.Join(dir, "test.db")

	out, err := executeCommand(t, "--db", db, "import", "--dry-run", file)
	require.NoError(t, err)
	assert.Contains(t, out, "2 transactions parsed, 0 imported")

	_, err = os.Stat(db)
	assert.True(t, os.IsNotExist(err), "dry run must not create the database")
}

func TestImportCmd_NoFiles(t *testing.T) {
	_, err := executeCommand(t, "import", filepath.Join(t.TempDir(), "*.qfx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files found")
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.qfx", statementOFX)
	b := writeFile(t, dir, "b.qfx", statementOFX)
	writeFile(t, dir, "notes.txt", "ignored")

	files, err := expandFiles([]string{filepath.Join(dir, "*.qfx")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, files)

	files, err = expandFiles([]string{a, filepath.Join(dir, "missing.qfx")})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, files)

	_, err = expandFiles([]string{"[bad"})
	require.Error(t, err)
}

func TestParseFiles_SkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.qfx", statementOFX)
	bad := writeFile(t, dir, "bad.qfx", "this is not ofx")

	txns, err := parseFiles(context.Background(), []string{bad, good}, io.Discard)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "food", txns[1].Category)
	assert.Equal(t, "CORNER COFFEE", txns[1].Description)
}
