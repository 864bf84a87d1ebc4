package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bitmark-hq/compiler/pkg/bitmark/registry"
	"bitmark-hq/compiler/pkg/cli"
	"bitmark-hq/compiler/pkg/config"
)

// tagView is the printable form of a registry tag.
type tagView struct {
	Key      string    `json:"key"`
	Max      int       `json:"max,omitempty"`
	Property bool      `json:"property,omitempty"`
	Resource bool      `json:"resource,omitempty"`
	Chain    []tagView `json:"chain,omitempty"`
}

// bitTypeView is the printable form of a registry bit type.
type bitTypeView struct {
	Name          string    `json:"name"`
	Parent        string    `json:"inherits,omitempty"`
	Aliases       []string  `json:"aliases,omitempty"`
	BodyAllowed   bool      `json:"bodyAllowed"`
	FooterAllowed bool      `json:"footerAllowed"`
	ResourceType  string    `json:"resourceType,omitempty"`
	CardSet       string    `json:"cardSet,omitempty"`
	Shape         string    `json:"shape,omitempty"`
	TrueFalse     string    `json:"trueFalse,omitempty"`
	Tags          []tagView `json:"tags"`
}

func newRegistryCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the bit type registry",
	}
	cmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "output format: text, json")

	list := &cobra.Command{
		Use:   "list",
		Short: "List bit types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, f, err := registryAndFormat(format)
			if err != nil {
				return err
			}
			names := reg.BitTypes()
			if f == cli.FormatJSON {
				return cli.NewFormatter(f, true).FormatTo(cmd.OutOrStdout(), names)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return err
		},
	}

	show := &cobra.Command{
		Use:   "show <bit-type>",
		Short: "Show the configuration of a bit type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, f, err := registryAndFormat(format)
			if err != nil {
				return err
			}
			m, ok := reg.Lookup(args[0])
			if !ok {
				return cli.NewCommandError("registry show", fmt.Errorf("unknown bit type %q", args[0]))
			}
			view := newBitTypeView(m)
			if f == cli.FormatJSON {
				return cli.NewFormatter(f, true).FormatTo(cmd.OutOrStdout(), view)
			}
			return writeBitType(cmd.OutOrStdout(), view)
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func registryAndFormat(format string) (*registry.Registry, cli.OutputFormat, error) {
	f, err := cli.ParseOutputFormat(format)
	if err != nil {
		return nil, "", err
	}
	reg, err := loadRegistry(config.MustGetConfig())
	if err != nil {
		return nil, "", err
	}
	return reg, f, nil
}

func newBitTypeView(m *registry.BitTypeMetadata) bitTypeView {
	v := bitTypeView{
		Name:          m.Name,
		Parent:        m.Parent,
		Aliases:       m.Aliases,
		BodyAllowed:   m.BodyAllowed,
		FooterAllowed: m.FooterAllowed,
		ResourceType:  m.ResourceType,
		TrueFalse:     string(m.TrueFalse),
		Tags:          newTagViews(m.Tags),
	}
	if m.CardSet != nil {
		v.CardSet = m.CardSet.Name
		v.Shape = string(m.CardSet.Shape)
	}
	return v
}

func newTagViews(tags registry.TagMap) []tagView {
	views := make([]tagView, 0, len(tags))
	for _, key := range tags.Keys() {
		td := tags[key]
		views = append(views, tagView{
			Key:      td.Key,
			Max:      td.MaxCount,
			Property: td.IsProperty,
			Resource: td.IsResource,
			Chain:    newTagViews(td.Chain),
		})
	}
	if len(views) == 0 {
		return nil
	}
	return views
}

func writeBitType(w io.Writer, v bitTypeView) error {
	fmt.Fprintf(w, "%s\n", v.Name)
	if v.Parent != "" {
		fmt.Fprintf(w, "  inherits:  %s\n", v.Parent)
	}
	if len(v.Aliases) > 0 {
		fmt.Fprintf(w, "  aliases:   %s\n", strings.Join(v.Aliases, ", "))
	}
	fmt.Fprintf(w, "  body:      %t\n", v.BodyAllowed)
	fmt.Fprintf(w, "  footer:    %t\n", v.FooterAllowed)
	if v.ResourceType != "" {
		fmt.Fprintf(w, "  resource:  %s\n", v.ResourceType)
	}
	if v.CardSet != "" {
		fmt.Fprintf(w, "  card set:  %s (%s)\n", v.CardSet, v.Shape)
	}
	fmt.Fprintln(w, "  tags:")
	return writeTags(w, v.Tags, "    ")
}

func writeTags(w io.Writer, tags []tagView, indent string) error {
	for _, t := range tags {
		limit := "unlimited"
		if t.Max > 0 {
			limit = fmt.Sprintf("max %d", t.Max)
		}
		if _, err := fmt.Fprintf(w, "%s%s (%s)\n", indent, t.Key, limit); err != nil {
			return err
		}
		if err := writeTags(w, t.Chain, indent+"  "); err != nil {
			return err
		}
	}
	return nil
}
