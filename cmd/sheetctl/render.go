package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
)

func renderList(w io.Writer, chars []*character.Character) error {
	if len(chars) == 0 {
		fmt.Fprintln(w, "No characters.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCLASS\tLEVEL\tAP\tMP\tHEX")
	for _, c := range chars {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d/%d\t%d/%d\t%d/%d\n",
			c.ID, c.Name, c.Class, c.Level,
			c.CurrentAP, c.MaxAP, c.CurrentMP, c.MaxMP, c.CurrentHEX, c.MaxHEX)
	}
	return tw.Flush()
}

func renderCharacter(w io.Writer, c *character.Character) {
	fmt.Fprintf(w, "#%d %s, level %d %s %s\n", c.ID, c.Name, c.Level, c.Race, c.Class)
	renderPool(w, c.Pool)
}

func renderPool(w io.Writer, p resource.Pool) {
	for _, f := range resource.Fields() {
		fmt.Fprintf(w, "  %-3s %d/%d\n", f.Label(), p.Current(f), p.Max(f))
	}
}

func renderSheet(w io.Writer, s *sheet.Sheet) error {
	renderCharacter(w, s.Character)
	for _, n := range s.Character.AbilityScores.Named() {
		fmt.Fprintf(w, "  %s %d", n.Name, n.Value)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(s.Spells) > 0 {
		fmt.Fprintln(tw, "SPELL\tNAME\tAP\tMP\tHEX")
		for _, sp := range s.Spells {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t+%d\n", sp.ID, sp.Name, sp.APCost, sp.MPCost, sp.HexIncrement)
		}
	}
	if len(s.Items) > 0 {
		fmt.Fprintln(tw, "ITEM\tNAME\tTYPE\tQTY\tEQUIPPED")
		for _, it := range s.Items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%t\n", it.ID, it.Name, it.Type, it.Quantity, it.Equipped)
		}
	}
	return tw.Flush()
}

func renderCast(w io.Writer, out *sheet.CastOutcome) {
	r := out.Result
	if !r.Success {
		fmt.Fprintf(w, "Cast rejected: %v\n", r.Reason)
		return
	}
	fmt.Fprintf(w, "Cast! -%d AP, -%d MP, +%d HEX\n", r.APSpent, r.MPSpent, r.HexGained)
	if out.Damage != nil {
		fmt.Fprintf(w, "Damage %s\n", out.Damage)
	}
	if r.HexOverflow {
		fmt.Fprintln(w, "HEX overflowed and reset to 0.")
	}
	if out.Character != nil {
		renderPool(w, out.Character.Pool)
	}
}
