// Package data embeds the offer fixtures served by the sample provider.
package data

import _ "embed"

//go:embed sample_offers.json
var SampleOffers []byte
