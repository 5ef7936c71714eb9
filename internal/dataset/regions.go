package dataset

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// regionNames maps the roman-numeral codes used by the deposit registry to region names.
var regionNames = map[string]string{
	"XV":   "Región de Arica y Parinacota",
	"I":    "Región de Tarapacá",
	"II":   "Región de Antofagasta",
	"III":  "Región de Atacama",
	"IV":   "Región de Coquimbo",
	"V":    "Región de Valparaíso",
	"RM":   "Región Metropolitana de Santiago",
	"VI":   "Región del Libertador Bernardo O'Higgins",
	"VII":  "Región del Maule",
	"XVI":  "Región de Ñuble",
	"VIII": "Región del Bío-Bío",
	"IX":   "Región de La Araucanía",
	"XIV":  "Región de Los Ríos",
	"X":    "Región de Los Lagos",
	"XI":   "Región de Aysén del Gral. Ibañez del Campo",
	"XII":  "Región de Magallanes y Antártica Chilena",
}

var regionCodes = func() map[string]string {
	codes := make(map[string]string, len(regionNames))
	for code, name := range regionNames {
		codes[foldName(name)] = code
	}
	return codes
}()

// RegionName returns the display name for a region code such as "RM" or " xv ".
func RegionName(code string) (string, bool) {
	name, ok := regionNames[strings.ToUpper(strings.TrimSpace(code))]
	return name, ok
}

// RegionCode returns the code of a region given its display name.
func RegionCode(name string) (string, bool) {
	code, ok := regionCodes[foldName(name)]
	return code, ok
}

// RegionCount is the number of regions in the code table.
func RegionCount() int {
	return len(regionNames)
}

func foldName(name string) string {
	return cases.Fold().String(norm.NFC.String(strings.Join(strings.Fields(name), " ")))
}
