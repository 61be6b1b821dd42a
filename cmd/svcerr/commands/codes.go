package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
)

// CodesCmd implements the 'codes' command.
type CodesCmd struct {
	JSON bool `help:"Print as JSON"`
}

type codeInfo struct {
	Code     errors.Code     `json:"code"`
	Severity errors.Severity `json:"severity"`
}

func (c *CodesCmd) Run(g *Global) error {
	all := errors.Codes()
	infos := make([]codeInfo, 0, len(all))
	for _, code := range all {
		infos = append(infos, codeInfo{Code: code, Severity: code.Severity()})
	}

	if c.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tSEVERITY")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\n", info.Code, info.Severity)
	}
	return tw.Flush()
}
