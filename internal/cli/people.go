package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/geneatree/geneatree/pkg/errors"
	"github.com/geneatree/geneatree/pkg/tree"
)

// peopleCommand creates the "people" command group.
func (c *CLI) peopleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "people",
		Aliases: []string{"person"},
		Short:   "List, add and remove people",
	}

	cmd.AddCommand(c.peopleListCommand())
	cmd.AddCommand(c.peopleAddCommand())
	cmd.AddCommand(c.peopleEditCommand())
	cmd.AddCommand(c.peopleRemoveCommand())
	cmd.AddCommand(c.peoplePickCommand())

	return cmd
}

func (c *CLI) peopleListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list <project.json>",
		Aliases: []string{"ls"},
		Short:   "List people by generation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				people := p.People
				if people == nil {
					people = []*tree.Person{}
				}
				enc := json.NewEncoder(out)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(people)
			}
			if len(p.People) == 0 {
				printInfo("No people in %s", args[0])
				return nil
			}
			fmt.Fprintln(out, peopleTable(p))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print people as JSON")
	return cmd
}

// personFlags are the optional fields of "people add" and "people edit".
type personFlags struct {
	display, full, gender, birth, death, note, photo string
	parents, children, spouses                       []string
}

// register adds the field and link flags to fs.
func (f *personFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.display, "display", "", "display name")
	fs.StringVar(&f.gender, "gender", "", "gender")
	fs.StringVar(&f.birth, "birth", "", "birth date")
	fs.StringVar(&f.death, "death", "", "death date")
	fs.StringVar(&f.note, "note", "", "free-form note")
	fs.StringVar(&f.photo, "photo", "", "photo file, copied into assets/ on save")
	fs.StringSliceVar(&f.parents, "parent", nil, "id of a parent (repeatable)")
	fs.StringSliceVar(&f.children, "child", nil, "id of a child (repeatable)")
	fs.StringSliceVar(&f.spouses, "spouse", nil, "id of a spouse (repeatable)")
}

func (c *CLI) peopleAddCommand() *cobra.Command {
	var f personFlags

	cmd := &cobra.Command{
		Use:   "add <project.json> [full name...]",
		Short: "Add a person",
		Long: `Add a person to a project.

The display name defaults to the first two words of the full name. Dates are
accepted as yyyy, dd.mm.yyyy or yyyy-mm-dd and stored as dd.mm.yyyy.

The new person can be linked in the same step:

  geneatree people add family.json "Petrov Pyotr Ivanovich" --parent p-1 --spouse p-7`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			person, err := f.person(c.ids(), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			err = c.updateProject(cmd.Context(), args[0], func(p *tree.TreeProject) error {
				p.AddPerson(person)
				return f.link(p, c.ids(), person.ID)
			})
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("added person", "id", person.ID)
			printSuccess("Added %s", StyleHighlight.Render(person.DisplayName))
			printDetail("id %s", person.ID)
			return nil
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func (f personFlags) person(ids tree.IDGenerator, fullName string) (*tree.Person, error) {
	birth, err := tree.NormalizeDate(f.birth)
	if err != nil {
		return nil, err
	}
	death, err := tree.NormalizeDate(f.death)
	if err != nil {
		return nil, err
	}

	photo, err := absPhoto(f.photo)
	if err != nil {
		return nil, err
	}

	name := f.display
	if name == "" {
		name = tree.ShortName(fullName)
	}
	person := tree.NewPerson(ids, name)
	person.FullName = tree.Optional(fullName)
	person.Gender = tree.Optional(f.gender)
	person.BirthDate = tree.Optional(birth)
	person.DeathDate = tree.Optional(death)
	person.Note = tree.Optional(f.note)
	person.PhotoPath = tree.Optional(photo)
	return person, nil
}

// edit returns the fields whose flags were set on the command line.
func (f personFlags) edit(fs *pflag.FlagSet) (tree.PersonEdit, error) {
	var e tree.PersonEdit
	changed := func(name string, v string) *string {
		if !fs.Changed(name) {
			return nil
		}
		return &v
	}
	e.DisplayName = changed("display", f.display)
	e.FullName = changed("full", f.full)
	e.Gender = changed("gender", f.gender)
	e.BirthDate = changed("birth", f.birth)
	e.DeathDate = changed("death", f.death)
	e.Note = changed("note", f.note)
	if fs.Changed("photo") {
		photo, err := absPhoto(f.photo)
		if err != nil {
			return e, err
		}
		e.PhotoPath = &photo
	}
	return e, nil
}

// absPhoto makes a photo path absolute against the working directory, since
// the store resolves relative paths against the project directory instead.
func absPhoto(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "can't resolve photo path %s", path)
	}
	return abs, nil
}

// link adds the relationships requested with --parent, --child and --spouse.
func (f personFlags) link(p *tree.TreeProject, ids tree.IDGenerator, id string) error {
	add := func(t tree.RelationType, from, to string) error {
		other := from
		if other == id {
			other = to
		}
		if p.Person(other) == nil {
			return errors.New(errors.ErrCodeNotFound, "person %s not found", other)
		}
		p.AddRelationship(tree.NewRelationship(ids, t, from, to))
		return nil
	}
	for _, parent := range f.parents {
		if err := add(tree.RelParent, parent, id); err != nil {
			return err
		}
	}
	for _, child := range f.children {
		if err := add(tree.RelParent, id, child); err != nil {
			return err
		}
	}
	for _, spouse := range f.spouses {
		if err := add(tree.RelSpouse, id, spouse); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) peopleEditCommand() *cobra.Command {
	var f personFlags

	cmd := &cobra.Command{
		Use:   "edit <project.json> <id>",
		Short: "Change a person's details",
		Long: `Change a person's details.

Only the fields given as flags are changed; an empty value clears an optional
field. Links given with --parent, --child and --spouse are added unless they
already exist:

  geneatree people edit family.json p-3 --death 1999 --note ""`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[1]
			edit, err := f.edit(cmd.Flags())
			if err != nil {
				return err
			}
			var person *tree.Person
			err = c.updateProject(cmd.Context(), args[0], func(p *tree.TreeProject) error {
				if person = p.Person(id); person == nil {
					return errors.New(errors.ErrCodeNotFound, "person %s not found", id)
				}
				if err := edit.Apply(person); err != nil {
					return err
				}
				return f.link(p, c.ids(), id)
			})
			if err != nil {
				return err
			}
			printSuccess("Updated %s", StyleHighlight.Render(person.DisplayName))
			return nil
		},
	}

	f.register(cmd.Flags())
	cmd.Flags().StringVar(&f.full, "full", "", "full name")
	return cmd
}

func (c *CLI) peopleRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <project.json> <id>...",
		Aliases: []string{"remove"},
		Short:   "Remove people and their relationships",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var removed []string
			err := c.updateProject(cmd.Context(), args[0], func(p *tree.TreeProject) error {
				for _, id := range args[1:] {
					if p.Person(id) == nil {
						return errors.New(errors.ErrCodeNotFound, "person %s not found", id)
					}
					p.RemovePerson(id)
					removed = append(removed, id)
				}
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %d person(s)", len(removed))
			return nil
		},
	}
}

func (c *CLI) peoplePickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pick <project.json>",
		Short: "Choose a person interactively and print their id",
		Long: `Choose a person interactively and print their id.

Type to filter by name; the id is printed to stdout so the command composes
with others:

  geneatree people rm family.json $(geneatree people pick family.json)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(p.People) == 0 {
				return errors.New(errors.ErrCodeNotFound, "no people in %s", args[0])
			}
			if !isTerminal(os.Stdin) || !isTerminal(os.Stderr) {
				return errors.New(errors.ErrCodeUnsupported, "people pick needs an interactive terminal")
			}
			person, err := pickPerson(cmd.Context(), p)
			if err != nil {
				return err
			}
			if person == nil {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), person.ID)
			return nil
		},
	}
}
