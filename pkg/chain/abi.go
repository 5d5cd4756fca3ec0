package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// TribeFactoryABI is the ABI of the factory that deploys tribe contracts.
const TribeFactoryABI = `[
  {"type":"function","name":"getTribes","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"address[]"}]},
  {"type":"function","name":"getCreatorTribes","stateMutability":"view",
   "inputs":[{"name":"creator","type":"address"}],
   "outputs":[{"name":"","type":"address[]"}]},
  {"type":"function","name":"createTribe","stateMutability":"nonpayable",
   "inputs":[{"name":"name","type":"string"},{"name":"description","type":"string"},
             {"name":"maxSupplies","type":"uint256[3]"},{"name":"prices","type":"uint256[3]"}],
   "outputs":[{"name":"","type":"address"}]}
]`

// TribeNFTABI is the ABI of a single tribe contract (tiered NFT + marketplace).
const TribeNFTABI = `[
  {"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"description","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"maxSupplies","stateMutability":"view",
   "inputs":[{"name":"tier","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"currentSupplies","stateMutability":"view",
   "inputs":[{"name":"tier","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"prices","stateMutability":"view",
   "inputs":[{"name":"tier","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getMemberTiers","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256[3]"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"tokenOfOwnerByIndex","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"},{"name":"index","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"tokenTiers","stateMutability":"view",
   "inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getActiveListings","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getListing","stateMutability":"view",
   "inputs":[{"name":"tokenId","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"seller","type":"address"},{"name":"price","type":"uint256"},
     {"name":"expiration","type":"uint256"},{"name":"active","type":"bool"}]}]},
  {"type":"function","name":"mint","stateMutability":"payable",
   "inputs":[{"name":"tier","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"listToken","stateMutability":"nonpayable",
   "inputs":[{"name":"tokenId","type":"uint256"},{"name":"price","type":"uint256"},
             {"name":"expiration","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"buyToken","stateMutability":"payable",
   "inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]}
]`

var (
	factoryABI = mustParseABI(TribeFactoryABI)
	tribeABI   = mustParseABI(TribeNFTABI)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("chain: invalid embedded ABI: " + err.Error())
	}
	return parsed
}
