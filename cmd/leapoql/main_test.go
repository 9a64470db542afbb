package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapoql/internal/cli"
	"github.com/leapstack-labs/leapoql/internal/cli/config"
	"github.com/leapstack-labs/leapoql/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateFromStdin(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	mappingPath := filepath.Join(dir, "orm.yaml")
	require.NoError(t, os.WriteFile(mappingPath, []byte(testutil.MappingYAML), 0600))
	cfgPath := filepath.Join(dir, "leapoql.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("mapping: orm.yaml\n"), 0600))

	cmd := cli.NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(bytes.NewBufferString("select distinct p.address.city from Person p\nselect max(o.total) from org.acme.Order o\n"))
	cmd.SetArgs([]string{"--config", cfgPath, "translate", "--file", "-"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "select distinct person0_.addr_city as col_0_0_ from person person0_")
	assert.Contains(t, out.String(), "select max(orders0_.total) as col_0_0_ from orders orders0_")
}
