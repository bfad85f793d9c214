// Package eventlog decodes crate-opening events from transaction receipts.
//
// The crate contract emits CratesOpened once per opening with the
// randomness it drew from and the item ids it minted. Those two values are
// all a reveal needs.
package eventlog

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// CrateABI is the event fragment of the crate contract.
const CrateABI = `[
  {
    "anonymous": false,
    "name": "CratesOpened",
    "type": "event",
    "inputs": [
      {"indexed": true,  "internalType": "address",   "name": "player",     "type": "address"},
      {"indexed": true,  "internalType": "uint256",   "name": "crateId",    "type": "uint256"},
      {"indexed": false, "internalType": "uint256",   "name": "randomness", "type": "uint256"},
      {"indexed": false, "internalType": "uint256[]", "name": "itemIds",    "type": "uint256[]"}
    ]
  }
]`

const eventName = "CratesOpened"

var (
	ErrEventMismatch = errors.New("log is not a CratesOpened event")
	ErrWrongContract = errors.New("log emitted by unexpected contract")
	ErrRemovedLog    = errors.New("log was removed by a reorg")
)

// Opened is a decoded CratesOpened event.
type Opened struct {
	Player      common.Address `json:"player"`
	CrateID     *uint256.Int   `json:"crateId"`
	Randomness  *uint256.Int   `json:"randomness"`
	ItemIDs     []uint64       `json:"itemIds"`
	TxHash      common.Hash    `json:"txHash"`
	BlockNumber uint64         `json:"blockNumber"`
	LogIndex    uint           `json:"logIndex"`
}

// Decoder decodes CratesOpened logs, optionally only from one contract.
type Decoder struct {
	abi      abi.ABI
	event    abi.Event
	indexed  abi.Arguments
	contract *common.Address
}

// NewDecoder parses the event ABI. An empty contract accepts logs from any
// address.
func NewDecoder(contract string) (*Decoder, error) {
	parsed, err := abi.JSON(strings.NewReader(CrateABI))
	if err != nil {
		return nil, fmt.Errorf("parse crate abi: %w", err)
	}
	ev, ok := parsed.Events[eventName]
	if !ok {
		return nil, fmt.Errorf("crate abi has no %s event", eventName)
	}
	d := &Decoder{abi: parsed, event: ev}
	for _, in := range ev.Inputs {
		if in.Indexed {
			d.indexed = append(d.indexed, in)
		}
	}
	if contract = strings.TrimSpace(contract); contract != "" {
		if !common.IsHexAddress(contract) {
			return nil, fmt.Errorf("invalid crate contract address %q", contract)
		}
		addr := common.HexToAddress(contract)
		d.contract = &addr
	}
	return d, nil
}

// Topic returns the event signature hash.
func (d *Decoder) Topic() common.Hash { return d.event.ID }

// Matches reports whether l looks like a CratesOpened log.
func (d *Decoder) Matches(l *types.Log) bool {
	return l != nil && len(l.Topics) > 0 && l.Topics[0] == d.event.ID
}

// Decode unpacks one log.
func (d *Decoder) Decode(l *types.Log) (*Opened, error) {
	if !d.Matches(l) {
		return nil, ErrEventMismatch
	}
	if l.Removed {
		return nil, ErrRemovedLog
	}
	if d.contract != nil && l.Address != *d.contract {
		return nil, fmt.Errorf("%w: %s", ErrWrongContract, l.Address.Hex())
	}

	var data struct {
		Randomness *big.Int
		ItemIds    []*big.Int
	}
	if err := d.abi.UnpackIntoInterface(&data, eventName, l.Data); err != nil {
		return nil, fmt.Errorf("unpack %s data: %w", eventName, err)
	}
	var topics struct {
		Player  common.Address
		CrateId *big.Int
	}
	if err := abi.ParseTopics(&topics, d.indexed, l.Topics[1:]); err != nil {
		return nil, fmt.Errorf("unpack %s topics: %w", eventName, err)
	}

	ids := make([]uint64, len(data.ItemIds))
	for i, id := range data.ItemIds {
		if !id.IsUint64() {
			return nil, fmt.Errorf("item id %s at index %d does not fit uint64", id, i)
		}
		ids[i] = id.Uint64()
	}
	crateID, _ := uint256.FromBig(topics.CrateId)
	randomness, _ := uint256.FromBig(data.Randomness)
	return &Opened{
		Player:      topics.Player,
		CrateID:     crateID,
		Randomness:  randomness,
		ItemIDs:     ids,
		TxHash:      l.TxHash,
		BlockNumber: l.BlockNumber,
		LogIndex:    l.Index,
	}, nil
}

// DecodeReceipt returns every CratesOpened event in a receipt. Logs of other
// events are skipped; a matching log that fails to decode is an error.
func (d *Decoder) DecodeReceipt(r *types.Receipt) ([]*Opened, error) {
	if r == nil {
		return nil, errors.New("nil receipt")
	}
	var out []*Opened
	for _, l := range r.Logs {
		if !d.Matches(l) {
			continue
		}
		o, err := d.Decode(l)
		if errors.Is(err, ErrWrongContract) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Encode builds the log the contract emits for o. Used for fixtures and for
// replaying reveals from stored event data.
func (d *Decoder) Encode(o *Opened) (*types.Log, error) {
	if o == nil || o.Randomness == nil || o.CrateID == nil {
		return nil, errors.New("encode: randomness and crate id are required")
	}
	ids := make([]*big.Int, len(o.ItemIDs))
	for i, id := range o.ItemIDs {
		ids[i] = new(big.Int).SetUint64(id)
	}
	data, err := d.event.Inputs.NonIndexed().Pack(o.Randomness.ToBig(), ids)
	if err != nil {
		return nil, fmt.Errorf("pack %s data: %w", eventName, err)
	}
	l := &types.Log{
		Topics: []common.Hash{
			d.event.ID,
			common.BytesToHash(o.Player.Bytes()),
			common.Hash(o.CrateID.Bytes32()),
		},
		Data:        data,
		TxHash:      o.TxHash,
		BlockNumber: o.BlockNumber,
		Index:       o.LogIndex,
	}
	if d.contract != nil {
		l.Address = *d.contract
	}
	return l, nil
}
