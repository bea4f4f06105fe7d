// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package remote

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNode serves the subset of the eth namespace used by RpcSource.
type fakeNode struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
	nonces   map[common.Address]uint64
	codes    map[common.Address][]byte
	storage  map[common.Address]map[common.Hash][]byte
	header   *types.Header
	chainId  int64
	fail     error
	calls    map[string]int
	blocks   []rpc.BlockNumber
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		balances: map[common.Address]*big.Int{},
		nonces:   map[common.Address]uint64{},
		codes:    map[common.Address][]byte{},
		storage:  map[common.Address]map[common.Hash][]byte{},
		calls:    map[string]int{},
		chainId:  250,
	}
}

func (n *fakeNode) record(method string, block rpc.BlockNumber) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls[method]++
	n.blocks = append(n.blocks, block)
	return n.fail
}

func (n *fakeNode) GetBalance(addr common.Address, block rpc.BlockNumber) (*hexutil.Big, error) {
	if err := n.record("eth_getBalance", block); err != nil {
		return nil, err
	}
	if balance, found := n.balances[addr]; found {
		return (*hexutil.Big)(balance), nil
	}
	return (*hexutil.Big)(new(big.Int)), nil
}

func (n *fakeNode) GetTransactionCount(addr common.Address, block rpc.BlockNumber) (hexutil.Uint64, error) {
	if err := n.record("eth_getTransactionCount", block); err != nil {
		return 0, err
	}
	return hexutil.Uint64(n.nonces[addr]), nil
}

func (n *fakeNode) GetCode(addr common.Address, block rpc.BlockNumber) (hexutil.Bytes, error) {
	if err := n.record("eth_getCode", block); err != nil {
		return nil, err
	}
	return n.codes[addr], nil
}

func (n *fakeNode) GetStorageAt(addr common.Address, key common.Hash, block rpc.BlockNumber) (hexutil.Bytes, error) {
	if err := n.record("eth_getStorageAt", block); err != nil {
		return nil, err
	}
	if value, found := n.storage[addr][key]; found {
		return value, nil
	}
	return make([]byte, 32), nil
}

func (n *fakeNode) BlockNumber() (hexutil.Uint64, error) {
	if err := n.record("eth_blockNumber", rpc.LatestBlockNumber); err != nil {
		return 0, err
	}
	return hexutil.Uint64(n.header.Number.Uint64()), nil
}

func (n *fakeNode) ChainId() (*hexutil.Big, error) {
	if err := n.record("eth_chainId", rpc.LatestBlockNumber); err != nil {
		return nil, err
	}
	return (*hexutil.Big)(big.NewInt(n.chainId)), nil
}

func (n *fakeNode) GetBlockByNumber(block rpc.BlockNumber, _ bool) (*types.Header, error) {
	if err := n.record("eth_getBlockByNumber", block); err != nil {
		return nil, err
	}
	return n.header, nil
}

func newTestSource(t *testing.T, node *fakeNode) *RpcSource {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", node))
	source := NewRpcSource(rpc.DialInProc(server))
	t.Cleanup(func() {
		source.Close()
		server.Stop()
	})
	return source
}

func TestRpcSource_FetchAccount_ObtainsAllFieldsInOneBatch(t *testing.T) {
	node := newFakeNode()
	addr := common.Address{0x12}
	node.balances[addr] = big.NewInt(1_000)
	node.nonces[addr] = 7
	node.codes[addr] = []byte{0x60, 0x00, 0x60, 0x00, 0xfd}
	source := newTestSource(t, node)

	info, err := source.FetchAccount(context.Background(), tosca.Address(addr), NewBlockReference(100))
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.Equal(t, tosca.NewValue(1_000), info.Balance)
	assert.Equal(t, uint64(7), info.Nonce)
	assert.Equal(t, tosca.Code(node.codes[addr]), info.Code)
	assert.NoError(t, info.Check())

	assert.Equal(t, 1, node.calls["eth_getBalance"])
	assert.Equal(t, 1, node.calls["eth_getTransactionCount"])
	assert.Equal(t, 1, node.calls["eth_getCode"])
	for _, block := range node.blocks {
		assert.Equal(t, rpc.BlockNumber(100), block)
	}
}

func TestRpcSource_FetchAccount_EmptyAccountsDoNotExist(t *testing.T) {
	source := newTestSource(t, newFakeNode())
	info, err := source.FetchAccount(context.Background(), tosca.Address{0x01}, Latest)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestRpcSource_FetchAccount_NodeErrorsAreReported(t *testing.T) {
	node := newFakeNode()
	node.fail = errors.New("injected failure")
	source := newTestSource(t, node)

	_, err := source.FetchAccount(context.Background(), tosca.Address{0x01}, Latest)
	require.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.NotErrorIs(t, err, errMalformedResponse)
	assert.Contains(t, err.Error(), "injected failure")
}

func TestRpcSource_FetchAccount_OversizedBalanceIsMalformed(t *testing.T) {
	node := newFakeNode()
	addr := common.Address{0x34}
	node.balances[addr] = new(big.Int).Lsh(big.NewInt(1), 260)
	source := newTestSource(t, node)

	_, err := source.FetchAccount(context.Background(), tosca.Address(addr), Latest)
	require.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.ErrorIs(t, err, errMalformedResponse)
}

func TestRpcSource_FetchStorage_LeftPadsShortValues(t *testing.T) {
	node := newFakeNode()
	addr := common.Address{0x56}
	key := common.Hash{31: 8}
	node.storage[addr] = map[common.Hash][]byte{key: {0x01, 0x02}}
	source := newTestSource(t, node)

	value, err := source.FetchStorage(context.Background(), tosca.Address(addr), tosca.Key(key), Latest)
	require.NoError(t, err)
	assert.Equal(t, tosca.Word{30: 0x01, 31: 0x02}, value)
	assert.Equal(t, 1, node.calls["eth_getStorageAt"])
	assert.Equal(t, []rpc.BlockNumber{rpc.LatestBlockNumber}, node.blocks)
}

func TestRpcSource_FetchStorage_OversizedValueIsMalformed(t *testing.T) {
	node := newFakeNode()
	addr := common.Address{0x56}
	key := common.Hash{}
	node.storage[addr] = map[common.Hash][]byte{key: make([]byte, 33)}
	source := newTestSource(t, node)

	_, err := source.FetchStorage(context.Background(), tosca.Address(addr), tosca.Key(key), Latest)
	require.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.ErrorIs(t, err, errMalformedResponse)
}

func TestRpcSource_FetchStorage_NodeErrorsAreReported(t *testing.T) {
	node := newFakeNode()
	node.fail = errors.New("injected failure")
	source := newTestSource(t, node)

	_, err := source.FetchStorage(context.Background(), tosca.Address{}, tosca.Key{}, Latest)
	require.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.NotErrorIs(t, err, errMalformedResponse)
}

func TestRpcSource_Pin_ResolvesTagsToNumbers(t *testing.T) {
	node := newFakeNode()
	node.header = testHeader(1234)
	source := newTestSource(t, node)

	tests := map[string]struct {
		block BlockReference
		want  uint64
	}{
		"latest":    {Latest, 1234},
		"finalized": {Finalized, 1234},
		"number":    {NewBlockReference(5), 5},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			pinned, err := source.Pin(context.Background(), test.block)
			require.NoError(t, err)
			number, concrete := pinned.Number()
			assert.True(t, concrete)
			assert.Equal(t, test.want, number)
		})
	}
	assert.Equal(t, 1, node.calls["eth_blockNumber"])
	assert.Equal(t, 1, node.calls["eth_getBlockByNumber"])
}

func TestRpcSource_FetchBlockParameters_DescribesBlock(t *testing.T) {
	node := newFakeNode()
	node.header = testHeader(77)
	source := newTestSource(t, node)

	params, err := source.FetchBlockParameters(context.Background(), NewBlockReference(77), tosca.R13_Cancun)
	require.NoError(t, err)

	assert.Equal(t, int64(77), params.BlockNumber)
	assert.Equal(t, int64(1_700_000_000), params.Timestamp)
	assert.Equal(t, tosca.Address{0xcb}, params.Coinbase)
	assert.Equal(t, tosca.Gas(30_000_000), params.GasLimit)
	assert.Equal(t, tosca.Hash{0xaa}, params.PrevRandao)
	assert.Equal(t, tosca.NewValue(1_000_000_000), params.BaseFee)
	assert.Equal(t, tosca.Word(tosca.NewValue(250)), params.ChainID)
	assert.Equal(t, tosca.R13_Cancun, params.Revision)
	assert.Equal(t, []rpc.BlockNumber{77, rpc.LatestBlockNumber}, node.blocks)
}

func TestRpcSource_FetchBlockParameters_MissingBlockIsReported(t *testing.T) {
	source := newTestSource(t, newFakeNode())
	_, err := source.FetchBlockParameters(context.Background(), NewBlockReference(1), tosca.R13_Cancun)
	require.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.ErrorIs(t, err, errMalformedResponse)
}

func testHeader(number int64) *types.Header {
	return &types.Header{
		Number:     big.NewInt(number),
		Time:       1_700_000_000,
		Coinbase:   common.Address{0xcb},
		GasLimit:   30_000_000,
		MixDigest:  common.Hash{0xaa},
		BaseFee:    big.NewInt(1_000_000_000),
		Difficulty: new(big.Int),
	}
}
