// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package geth

import (
	"math/big"

	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/ethereum/go-ethereum/params"
)

// MakeChainConfig returns a chain config for the given chain ID in which all
// hard forks up to the target revision are active from the genesis block on.
// Forks after the target revision are disabled. Paris and later revisions
// additionally require the block context to provide a random value.
func MakeChainConfig(chainId *big.Int, targetRevision tosca.Revision) params.ChainConfig {
	zero := uint64(0)
	chainConfig := *params.AllEthashProtocolChanges
	chainConfig.ChainID = chainId

	chainConfig.HomesteadBlock = big.NewInt(0)
	chainConfig.EIP150Block = big.NewInt(0)
	chainConfig.EIP155Block = big.NewInt(0)
	chainConfig.EIP158Block = big.NewInt(0)
	chainConfig.ByzantiumBlock = big.NewInt(0)
	chainConfig.ConstantinopleBlock = big.NewInt(0)
	chainConfig.PetersburgBlock = big.NewInt(0)
	chainConfig.IstanbulBlock = big.NewInt(0)
	chainConfig.MuirGlacierBlock = big.NewInt(0)

	chainConfig.BerlinBlock = nil
	chainConfig.LondonBlock = nil
	chainConfig.ArrowGlacierBlock = nil
	chainConfig.GrayGlacierBlock = nil
	chainConfig.MergeNetsplitBlock = nil
	chainConfig.ShanghaiTime = nil
	chainConfig.CancunTime = nil
	chainConfig.PragueTime = nil
	chainConfig.VerkleTime = nil

	if targetRevision >= tosca.R09_Berlin {
		chainConfig.BerlinBlock = big.NewInt(0)
	}
	if targetRevision >= tosca.R10_London {
		chainConfig.LondonBlock = big.NewInt(0)
	}
	if targetRevision >= tosca.R11_Paris {
		chainConfig.MergeNetsplitBlock = big.NewInt(0)
	}
	if targetRevision >= tosca.R12_Shanghai {
		chainConfig.ShanghaiTime = &zero
	}
	if targetRevision >= tosca.R13_Cancun {
		cancun := zero
		chainConfig.CancunTime = &cancun
	}
	return chainConfig
}
