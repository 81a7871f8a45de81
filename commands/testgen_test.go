package commands

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestGenCmd(t *testing.T) {
	dir, err := ioutil.TempDir("", "testgen")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	msg := &cash.SendMsg{
		Source:      custodytest.NewAddress(),
		Destination: custodytest.NewAddress(),
		Amount:      coin.NewCoinp(1, 0, "ETH"),
	}
	err = TestGenCmd([]Example{{Filename: "send", Obj: msg}}, []string{dir})
	require.NoError(t, err)

	bin, err := ioutil.ReadFile(filepath.Join(dir, "send.bin"))
	require.NoError(t, err)
	var loaded cash.SendMsg
	require.NoError(t, loaded.Unmarshal(bin))
	assert.Equal(t, msg.Source, loaded.Source)

	js, err := ioutil.ReadFile(filepath.Join(dir, "send.json"))
	require.NoError(t, err)
	assert.Contains(t, string(js), msg.Source.Hex())
}
