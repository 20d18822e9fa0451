package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/rest"
)

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%s id must be a positive integer, got %q", kind, s)
	}
	return id, nil
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every character",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chars, err := a.api.ListCharacters(cmd.Context())
			if err != nil {
				return err
			}
			return renderList(a.out, chars)
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show CHARACTER_ID",
		Short: "Show a character sheet with its spells and items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("character", args[0])
			if err != nil {
				return err
			}
			s, err := a.api.GetCharacter(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderSheet(a.out, s)
		},
	}
}

func (a *app) createCmd() *cobra.Command {
	var race, class string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a level 1 character with a full default pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := character.New(args[0], race, class)
			if err != nil {
				return err
			}
			created, err := a.api.CreateCharacter(cmd.Context(), c)
			if err != nil {
				return err
			}
			renderCharacter(a.out, created)
			return nil
		},
	}
	cmd.Flags().StringVar(&race, "race", "", "character race")
	cmd.Flags().StringVar(&class, "class", "", "character class")
	return cmd
}

func (a *app) castCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cast SPELL_ID",
		Short: "Cast a spell, paying AP and MP and accruing HEX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("spell", args[0])
			if err != nil {
				return err
			}
			out, err := a.ops.CastSpell(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderCast(a.out, out)
			if !out.Result.Success {
				return fmt.Errorf("cast failed: %w", out.Result.Reason)
			}
			return nil
		},
	}
}

func (a *app) restCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rest CHARACTER_ID short|long",
		Short: "Take a short or long rest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("character", args[0])
			if err != nil {
				return err
			}
			t, err := rest.ParseType(args[1])
			if err != nil {
				return err
			}
			c, err := a.ops.Rest(cmd.Context(), id, t)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s finished a %s rest.\n", c.Name, t)
			renderPool(a.out, c.Pool)
			return nil
		},
	}
}

func (a *app) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set CHARACTER_ID ap|mp|hex VALUE",
		Short: "Set a current resource; the value is clamped to its maximum",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("character", args[0])
			if err != nil {
				return err
			}
			f, err := resource.ParseField(args[1])
			if err != nil {
				return err
			}
			c, err := a.ops.SetResource(cmd.Context(), id, f, args[2])
			if err != nil {
				return err
			}
			renderPool(a.out, c.Pool)
			return nil
		},
	}
}

func (a *app) adjustCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adjust CHARACTER_ID ap|mp|hex DELTA",
		Short: "Add a signed delta to a current resource",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("character", args[0])
			if err != nil {
				return err
			}
			f, err := resource.ParseField(args[1])
			if err != nil {
				return err
			}
			delta, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("delta must be an integer, got %q", args[2])
			}
			c, err := a.ops.AdjustResource(cmd.Context(), id, f, delta)
			if err != nil {
				return err
			}
			renderPool(a.out, c.Pool)
			return nil
		},
	}
}

func (a *app) toggleEquipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-equip ITEM_ID",
		Short: "Equip or unequip an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			it, err := a.ops.ToggleEquip(cmd.Context(), id)
			if err != nil {
				return err
			}
			state := "unequipped"
			if it.Equipped {
				state = "equipped"
			}
			fmt.Fprintf(a.out, "%s is now %s.\n", it.Name, state)
			return nil
		},
	}
}
