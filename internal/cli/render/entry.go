package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/usecase"
)

// EntryRenderer renders a single registry entry in detail
type EntryRenderer struct {
	out   io.Writer
	color bool
}

// NewEntryRenderer creates a new entry renderer
func NewEntryRenderer(out io.Writer, useColor bool) *EntryRenderer {
	return &EntryRenderer{out: out, color: useColor}
}

// Render renders one entry with all recorded fields
func (r *EntryRenderer) Render(result *usecase.ShowEntryResult) error {
	e := result.Entry

	header := e.DisplayName()
	if r.color {
		header = sectionHeaderStyle.Sprint(header)
	}
	fmt.Fprintln(r.out, header)

	r.field("Address", e.Address.Hex())
	if e.ContractType != "" {
		r.field("Contract", e.ContractType)
	}
	if e.ContractPath != "" {
		r.field("Source", e.ContractPath)
	}
	r.field("Deployer", e.Deployer.Hex())
	r.field("Block", fmt.Sprintf("%d", e.BlockNumber))

	if e.IsProxy() {
		fmt.Fprintln(r.out)
		sub := "Proxy"
		if r.color {
			sub = sectionHeaderStyle.Sprint(sub)
		}
		fmt.Fprintln(r.out, sub)
		r.field("Factory", e.Factory.Hex())
		r.field("Salt", e.Salt.Hex())
		if e.SaltString != "" {
			r.field("Salt string", e.SaltString)
		}
		if e.Implementation != (common.Address{}) {
			r.field("Implementation", e.Implementation.Hex())
		}
	}
	return nil
}

func (r *EntryRenderer) field(name, value string) {
	label := fmt.Sprintf("%-15s", name+":")
	if r.color {
		label = faintStyle.Sprint(label)
	}
	fmt.Fprintf(r.out, "  %s %s\n", label, value)
}
