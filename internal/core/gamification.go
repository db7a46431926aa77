package core

import "strings"

var medals = map[string]string{
	"DIAMANTE": "medalha_diamante.png",
	"PLATINA":  "medalha_platina.png",
	"OURO":     "medalha_ouro.png",
	"BRONZE":   "medalha_bronze.png",
	"FERRO":    "medalha_ferro.png",
}

// MedalFor returns the medal image for a gamification rank, or "" if the
// rank has none.
func MedalFor(rank string) string {
	return medals[strings.ToUpper(strings.TrimSpace(rank))]
}
