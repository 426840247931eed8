package output

import "github.com/fatih/color"

var (
	Dim     = []color.Attribute{color.Faint}
	Failure = []color.Attribute{color.FgRed}
	Warning = []color.Attribute{color.FgYellow}
	Success = []color.Attribute{color.FgGreen} //file written
	Created = []color.Attribute{color.FgCyan}  //stream added
)
