package runner

import (
	"github.com/projectdiscovery/gologger"
	updateutils "github.com/projectdiscovery/utils/update"
)

var banner = `
   ________  _________  _______  _______/ /____  _____
  / ___/ _ \/ ___/ __ \/ ___/ / / / ___/ __/ _ \/ ___/
 (__  )  __/ /  / /_/ / /__/ /_/ (__  ) /_/  __/ /
/____/\___/_/  / .___/\___/\__,_/____/\__/\___/_/
              /_/
`

var version = "v0.1.0"

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\tserpkit.io\n\n")
}

// GetUpdateCallback returns a callback function that updates serpcluster
func GetUpdateCallback() func() {
	return func() {
		showBanner()
		updateutils.GetUpdateToolCallback("serpcluster", version)()
	}
}
