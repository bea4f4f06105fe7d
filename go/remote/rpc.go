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
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/Fenice/go/tosca"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/consensus/misc/eip4844"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
)

// errMalformedResponse marks failures caused by responses of the remote node
// that could not be interpreted. Those are not resolved by retrying.
const errMalformedResponse = tosca.ConstError("malformed response")

// RpcSource fetches state from an Ethereum-compatible JSON-RPC endpoint. It
// neither caches nor retries; see WithRetry and the state package for that.
type RpcSource struct {
	client *rpc.Client
}

// DialRpcSource connects to the JSON-RPC endpoint at the given URL. Supported
// are HTTP, WebSocket, and IPC endpoints.
func DialRpcSource(ctx context.Context, url string) (*RpcSource, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to %s: %w", ErrRemoteUnavailable, url, err)
	}
	return NewRpcSource(client), nil
}

func NewRpcSource(client *rpc.Client) *RpcSource {
	return &RpcSource{client: client}
}

// Close terminates the connection to the remote node.
func (s *RpcSource) Close() {
	s.client.Close()
}

// FetchAccount obtains balance, nonce, and code of an account in a single
// batched round trip.
func (s *RpcSource) FetchAccount(ctx context.Context, addr tosca.Address, block BlockReference) (*tosca.AccountInfo, error) {
	var (
		balance hexutil.Big
		nonce   hexutil.Uint64
		code    hexutil.Bytes
	)
	address := common.Address(addr)
	number := block.rpcNumber()
	batch := []rpc.BatchElem{
		{Method: "eth_getBalance", Args: []any{address, number}, Result: &balance},
		{Method: "eth_getTransactionCount", Args: []any{address, number}, Result: &nonce},
		{Method: "eth_getCode", Args: []any{address, number}, Result: &code},
	}
	log.Debug("Fetching account", "address", addr, "block", block)
	if err := s.client.BatchCallContext(ctx, batch); err != nil {
		return nil, fmt.Errorf("%w: failed to fetch account %v at block %v: %w", ErrRemoteUnavailable, addr, block, err)
	}
	for _, elem := range batch {
		if elem.Error != nil {
			return nil, fmt.Errorf("%w: %s for account %v at block %v failed: %w", ErrRemoteUnavailable, elem.Method, addr, block, classify(elem.Error))
		}
	}

	value, overflow := uint256.FromBig((*big.Int)(&balance))
	if overflow || (*big.Int)(&balance).Sign() < 0 {
		return nil, fmt.Errorf("%w: %w: balance %v of account %v at block %v exceeds 256 bits", ErrRemoteUnavailable, errMalformedResponse, (*big.Int)(&balance), addr, block)
	}

	info := tosca.NewAccountInfo(tosca.ValueFromUint256(value), uint64(nonce), tosca.Code(code))
	if info.IsEmpty() {
		return nil, nil
	}
	return &info, nil
}

// FetchStorage obtains a single storage slot using eth_getStorageAt.
func (s *RpcSource) FetchStorage(ctx context.Context, addr tosca.Address, key tosca.Key, block BlockReference) (tosca.Word, error) {
	var value hexutil.Bytes
	log.Trace("Fetching storage", "address", addr, "key", key, "block", block)
	err := s.client.CallContext(ctx, &value, "eth_getStorageAt", common.Address(addr), common.Hash(key), block.rpcNumber())
	if err != nil {
		return tosca.Word{}, fmt.Errorf("%w: failed to fetch slot %v of %v at block %v: %w", ErrRemoteUnavailable, key, addr, block, classify(err))
	}
	if len(value) > len(tosca.Word{}) {
		return tosca.Word{}, fmt.Errorf("%w: %w: slot %v of %v at block %v has %d bytes", ErrRemoteUnavailable, errMalformedResponse, key, addr, block, len(value))
	}
	var res tosca.Word
	copy(res[len(res)-len(value):], value)
	return res, nil
}

// LatestBlock obtains the number of the most recent block known to the node.
func (s *RpcSource) LatestBlock(ctx context.Context) (uint64, error) {
	var number hexutil.Uint64
	if err := s.client.CallContext(ctx, &number, "eth_blockNumber"); err != nil {
		return 0, fmt.Errorf("%w: failed to fetch latest block number: %w", ErrRemoteUnavailable, classify(err))
	}
	return uint64(number), nil
}

// Pin resolves tags like latest or finalized to the concrete block they
// currently refer to, such that repeated reads observe the same state.
// Concrete references are returned unchanged.
func (s *RpcSource) Pin(ctx context.Context, block BlockReference) (BlockReference, error) {
	if block.IsConcrete() {
		return block, nil
	}
	if block.rpcNumber() == rpc.LatestBlockNumber {
		number, err := s.LatestBlock(ctx)
		if err != nil {
			return BlockReference{}, err
		}
		return NewBlockReference(number), nil
	}
	header, err := s.header(ctx, block)
	if err != nil {
		return BlockReference{}, err
	}
	return NewBlockReference(header.number), nil
}

// FetchBlockParameters describes the environment of the referenced block as
// seen by contracts executed on top of its state.
func (s *RpcSource) FetchBlockParameters(ctx context.Context, block BlockReference, revision tosca.Revision) (tosca.BlockParameters, error) {
	header, err := s.header(ctx, block)
	if err != nil {
		return tosca.BlockParameters{}, err
	}

	var chainId hexutil.Big
	if err := s.client.CallContext(ctx, &chainId, "eth_chainId"); err != nil {
		return tosca.BlockParameters{}, fmt.Errorf("%w: failed to fetch chain id: %w", ErrRemoteUnavailable, classify(err))
	}
	chainIdValue, overflow := uint256.FromBig((*big.Int)(&chainId))
	if overflow {
		return tosca.BlockParameters{}, fmt.Errorf("%w: %w: chain id exceeds 256 bits", ErrRemoteUnavailable, errMalformedResponse)
	}

	return tosca.BlockParameters{
		ChainID:     tosca.Word(tosca.ValueFromUint256(chainIdValue)),
		BlockNumber: int64(header.number),
		Timestamp:   int64(header.time),
		Coinbase:    header.coinbase,
		GasLimit:    tosca.Gas(header.gasLimit),
		PrevRandao:  header.prevRandao,
		BaseFee:     header.baseFee,
		BlobBaseFee: header.blobBaseFee,
		Revision:    revision,
	}, nil
}

type blockHeader struct {
	number      uint64
	time        uint64
	coinbase    tosca.Address
	gasLimit    uint64
	prevRandao  tosca.Hash
	baseFee     tosca.Value
	blobBaseFee tosca.Value
}

func (s *RpcSource) header(ctx context.Context, block BlockReference) (blockHeader, error) {
	client := ethclient.NewClient(s.client)
	header, err := client.HeaderByNumber(ctx, big.NewInt(int64(block.rpcNumber())))
	if err != nil {
		return blockHeader{}, fmt.Errorf("%w: failed to fetch header of block %v: %w", ErrRemoteUnavailable, block, classify(err))
	}
	res := blockHeader{
		number:     header.Number.Uint64(),
		time:       header.Time,
		coinbase:   tosca.Address(header.Coinbase),
		gasLimit:   header.GasLimit,
		prevRandao: tosca.Hash(header.MixDigest),
	}
	if header.BaseFee != nil {
		fee, overflow := uint256.FromBig(header.BaseFee)
		if overflow {
			return blockHeader{}, fmt.Errorf("%w: %w: base fee of block %v exceeds 256 bits", ErrRemoteUnavailable, errMalformedResponse, block)
		}
		res.baseFee = tosca.ValueFromUint256(fee)
	}
	if header.ExcessBlobGas != nil {
		fee, overflow := uint256.FromBig(eip4844.CalcBlobFee(*header.ExcessBlobGas))
		if !overflow {
			res.blobBaseFee = tosca.ValueFromUint256(fee)
		}
	}
	return res, nil
}

// classify marks errors produced by decoding responses as malformed. Errors
// reported by the node itself or by the transport are left untouched.
func classify(err error) error {
	var jsonErr rpc.Error
	if errors.As(err, &jsonErr) {
		return err
	}
	if isDecodingError(err) {
		return fmt.Errorf("%w: %w", errMalformedResponse, err)
	}
	return err
}

func isDecodingError(err error) bool {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	return errors.As(err, &typeErr) ||
		errors.As(err, &syntaxErr) ||
		errors.Is(err, rpc.ErrNoResult) ||
		errors.Is(err, ethereum.NotFound)
}
