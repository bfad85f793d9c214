package eventlog

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	testContract = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	testPlayer   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	testTx       = common.HexToHash("0xdeadbeef")
)

func testOpened() *Opened {
	return &Opened{
		Player:      testPlayer,
		CrateID:     uint256.NewInt(7),
		Randomness:  uint256.MustFromHex("0x9f3c1e2d4b5a69788796a5b4c3d2e1f00112233445566778899aabbccddeeff"),
		ItemIDs:     []uint64{12, 40, 12},
		TxHash:      testTx,
		BlockNumber: 1234,
		LogIndex:    3,
	}
}

func TestTopicIsEventSignature(t *testing.T) {
	d, err := NewDecoder("")
	require.NoError(t, err)
	want := crypto.Keccak256Hash([]byte("CratesOpened(address,uint256,uint256,uint256[])"))
	require.Equal(t, want, d.Topic())
}

func TestDecodeRoundTrip(t *testing.T) {
	d, err := NewDecoder(testContract.Hex())
	require.NoError(t, err)
	l, err := d.Encode(testOpened())
	require.NoError(t, err)
	require.Equal(t, testContract, l.Address)

	got, err := d.Decode(l)
	require.NoError(t, err)
	require.Equal(t, testOpened(), got)
}

func TestDecodeHandPacked(t *testing.T) {
	d, err := NewDecoder("")
	require.NoError(t, err)
	data, err := d.event.Inputs.NonIndexed().Pack(big.NewInt(424242), []*big.Int{big.NewInt(5), big.NewInt(9)})
	require.NoError(t, err)
	l := &types.Log{
		Address: testContract,
		Topics:  []common.Hash{d.Topic(), common.BytesToHash(testPlayer.Bytes()), common.BigToHash(big.NewInt(99))},
		Data:    data,
		TxHash:  testTx,
	}
	got, err := d.Decode(l)
	require.NoError(t, err)
	require.Equal(t, testPlayer, got.Player)
	require.Equal(t, uint64(99), got.CrateID.Uint64())
	require.Equal(t, uint64(424242), got.Randomness.Uint64())
	require.Equal(t, []uint64{5, 9}, got.ItemIDs)
}

func TestDecodeRejects(t *testing.T) {
	d, err := NewDecoder(testContract.Hex())
	require.NoError(t, err)

	_, err = d.Decode(&types.Log{Topics: []common.Hash{common.HexToHash("0x01")}})
	require.ErrorIs(t, err, ErrEventMismatch)
	_, err = d.Decode(&types.Log{})
	require.ErrorIs(t, err, ErrEventMismatch)
	_, err = d.Decode(nil)
	require.ErrorIs(t, err, ErrEventMismatch)

	l, err := d.Encode(testOpened())
	require.NoError(t, err)
	l.Address = testPlayer
	_, err = d.Decode(l)
	require.ErrorIs(t, err, ErrWrongContract)

	l.Address = testContract
	l.Removed = true
	_, err = d.Decode(l)
	require.ErrorIs(t, err, ErrRemovedLog)

	l.Removed = false
	l.Data = l.Data[:40]
	_, err = d.Decode(l)
	require.Error(t, err)
}

func TestDecodeItemIDOverflow(t *testing.T) {
	d, err := NewDecoder("")
	require.NoError(t, err)
	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	data, err := d.event.Inputs.NonIndexed().Pack(big.NewInt(1), []*big.Int{huge})
	require.NoError(t, err)
	l := &types.Log{
		Topics: []common.Hash{d.Topic(), common.BytesToHash(testPlayer.Bytes()), common.BigToHash(big.NewInt(1))},
		Data:   data,
	}
	_, err = d.Decode(l)
	require.ErrorContains(t, err, "does not fit uint64")
}

func TestDecodeReceipt(t *testing.T) {
	d, err := NewDecoder(testContract.Hex())
	require.NoError(t, err)
	ours, err := d.Encode(testOpened())
	require.NoError(t, err)
	foreign, err := d.Encode(testOpened())
	require.NoError(t, err)
	foreign.Address = testPlayer
	transfer := &types.Log{Address: testContract, Topics: []common.Hash{crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))}}

	out, err := d.DecodeReceipt(&types.Receipt{Logs: []*types.Log{transfer, foreign, ours}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, []uint64{12, 40, 12}, out[0].ItemIDs)

	_, err = d.DecodeReceipt(nil)
	require.Error(t, err)
}

func TestDecodeFromJSONLog(t *testing.T) {
	d, err := NewDecoder("")
	require.NoError(t, err)
	l, err := d.Encode(testOpened())
	require.NoError(t, err)
	raw, err := json.Marshal(l)
	require.NoError(t, err)

	var back types.Log
	require.NoError(t, json.Unmarshal(raw, &back))
	got, err := d.Decode(&back)
	require.NoError(t, err)
	require.Equal(t, testOpened().Randomness, got.Randomness)
	require.Equal(t, uint(3), got.LogIndex)
}

func TestNewDecoderBadAddress(t *testing.T) {
	_, err := NewDecoder("0x1234")
	require.Error(t, err)
}
