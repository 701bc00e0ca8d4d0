package chain

func init() {
	Register(Mainnet, &Params{
		Name:             "Bitcoin",
		Bech32HRP:        "bc",
		PubKeyHashAddrID: 0x00,
		ScriptHashAddrID: 0x05,
	})

	Register(Testnet, &Params{
		Name:             "Bitcoin Testnet",
		Bech32HRP:        "tb",
		PubKeyHashAddrID: 0x6F,
		ScriptHashAddrID: 0xC4,
	})
}
