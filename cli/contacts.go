// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing the crew book
package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/store"
)

// AddContactCommand adds a new contact.
func AddContactCommand(s store.Store, args []string) error {
	fs := newFlagSet("add-contact")
	first := fs.String("first", "", "First name (required)")
	last := fs.String("last", "", "Last name")
	phone := fs.String("phone", "", "Phone number")
	email := fs.String("email", "", "Email address")
	notes := fs.String("notes", "", "Private notes, never shared by QR")
	favorite := fs.Bool("favorite", false, "Mark as favorite")
	var titles stringList
	fs.Var(&titles, "title", "Job title (repeatable, up to 3)")
	var locations locationList
	fs.Var(&locations, "location", "Work location Country[/Region][:rvlp] (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *first == "" {
		return fmt.Errorf("--first is required")
	}

	contact := &models.Contact{
		FirstName:  *first,
		LastName:   *last,
		JobTitles:  titles,
		Phone:      *phone,
		Email:      *email,
		Notes:      *notes,
		IsFavorite: *favorite,
		Locations:  locations,
	}

	if _, err := s.Create(context.Background(), contact); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	zap.L().Debug("contact created", zap.String("id", contact.ID))

	fmt.Fprintf(Stdout, "✓ Contact created: %s (ID: %s)\n", contact.FullName(), contact.ID)
	if t := models.CanonicalJobTitles(*contact); len(t) > 0 {
		fmt.Fprintf(Stdout, "  Titles: %s\n", strings.Join(t, ", "))
	}
	if city := contact.City(); city != "" {
		fmt.Fprintf(Stdout, "  City: %s\n", city)
	}
	return nil
}

// ListContactsCommand lists contacts, optionally filtered.
func ListContactsCommand(s store.Store, args []string) error {
	fs := newFlagSet("list-contacts")
	query := fs.String("query", "", "Search by name, title, phone, email or place")
	favorites := fs.Bool("favorites", false, "Only favorites")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contacts, err := s.Search(context.Background(), *query, *limit)
	if err != nil {
		return fmt.Errorf("failed to find contacts: %w", err)
	}
	if *favorites {
		kept := contacts[:0]
		for _, c := range contacts {
			if c.IsFavorite {
				kept = append(kept, c)
			}
		}
		contacts = kept
	}

	if len(contacts) == 0 {
		fmt.Fprintln(Stdout, "No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTITLES\tPHONE\tCITY\tFAV\tID")
	_, _ = fmt.Fprintln(w, "----\t------\t-----\t----\t---\t--")

	for i := range contacts {
		c := &contacts[i]
		fav := ""
		if c.IsFavorite {
			fav = "★"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.FullName(), dash(strings.Join(models.CanonicalJobTitles(*c), ", ")),
			dash(c.Phone), dash(c.City()), fav, c.ID)
	}
	_ = w.Flush()

	fmt.Fprintf(Stdout, "\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

// DeleteContactCommand deletes a contact by id.
func DeleteContactCommand(s store.Store, args []string) error {
	fs := newFlagSet("delete-contact")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("contact ID is required")
	}

	id := fs.Arg(0)
	if err := s.Delete(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	fmt.Fprintf(Stdout, "✓ Contact deleted: %s\n", id)
	return nil
}

// FavoriteCommand marks or unmarks a contact as favorite.
func FavoriteCommand(s store.Store, args []string) error {
	fs := newFlagSet("favorite")
	off := fs.Bool("off", false, "Remove the favorite mark")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("contact ID is required")
	}

	id := fs.Arg(0)
	if err := s.SetFavorite(context.Background(), id, !*off); err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}

	if *off {
		fmt.Fprintf(Stdout, "✓ Removed from favorites: %s\n", id)
	} else {
		fmt.Fprintf(Stdout, "✓ Added to favorites: %s\n", id)
	}
	return nil
}
