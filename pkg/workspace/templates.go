package workspace

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
	"github.com/dmaldonado/nestdesk/pkg/store"
)

// AddTemplate creates a custom message template.
func (w *Workspace) AddTemplate(ctx context.Context, template crm.Template) (crm.Template, error) {
	if template.Name == "" || template.Content == "" {
		return crm.Template{}, domain.NewValidationError("name and content are required")
	}
	if !validCategory(template.Category) {
		return crm.Template{}, domain.NewValidationError("invalid category")
	}
	if template.IsTeamShared && w.TeamID() == nil {
		return crm.Template{}, domain.NewValidationError("cannot share a template without a team")
	}

	template.ID = uuid.NewString()
	template.UserID = w.user.ID
	template.IsDefault = false
	template.TeamID = nil
	if template.IsTeamShared {
		template.TeamID = w.TeamID()
	}
	template.CreatedAt = time.Now()

	w.remoteWrite("template.create", func() error {
		return w.remote.Templates.Create(ctx, &template)
	})
	w.state.Dispatch(store.TemplateAdded{Template: template})
	w.saveLocal(saveTemplates)
	return template, nil
}

// UpdateTemplate edits a template. Editing one of the stock templates
// turns it into the user's own copy under the same ID, so their version
// wins from then on.
func (w *Workspace) UpdateTemplate(ctx context.Context, template crm.Template) (crm.Template, error) {
	existing, ok := w.state.TemplateByID(template.ID)
	if !ok {
		return crm.Template{}, domain.NewNotFoundError("template")
	}
	if template.Name == "" || template.Content == "" {
		return crm.Template{}, domain.NewValidationError("name and content are required")
	}
	if template.Category == "" {
		template.Category = existing.Category
	}
	if !validCategory(template.Category) {
		return crm.Template{}, domain.NewValidationError("invalid category")
	}
	if template.IsTeamShared && w.TeamID() == nil {
		return crm.Template{}, domain.NewValidationError("cannot share a template without a team")
	}

	template.UserID = w.user.ID
	template.IsDefault = false
	template.TeamID = nil
	if template.IsTeamShared {
		template.TeamID = w.TeamID()
	}
	template.CreatedAt = existing.CreatedAt

	w.remoteWrite("template.update", func() error {
		err := w.remote.Templates.Update(ctx, &template)
		if domain.IsNotFound(err) {
			// Stock templates have no row until first customized.
			return w.remote.Templates.Create(ctx, &template)
		}
		return err
	})
	w.state.Dispatch(store.TemplateUpdated{Template: template})
	w.saveLocal(saveTemplates)
	return template, nil
}

// DeleteTemplate removes a template from the workspace.
func (w *Workspace) DeleteTemplate(ctx context.Context, templateID string) error {
	if _, ok := w.state.TemplateByID(templateID); !ok {
		return domain.NewNotFoundError("template")
	}

	w.remoteWrite("template.delete", func() error {
		err := w.remote.Templates.Delete(ctx, templateID, w.user.ID)
		if domain.IsNotFound(err) {
			// Deleting a never-customized stock template has no row to hit.
			return nil
		}
		return err
	})
	w.state.Dispatch(store.TemplateDeleted{ID: templateID})
	w.saveLocal(saveTemplates)
	return nil
}

// FillTemplate renders a template with a contact's fields and the agent's
// first name. contactID may be empty to preview without a contact.
func (w *Workspace) FillTemplate(templateID, contactID string) (string, error) {
	template, ok := w.state.TemplateByID(templateID)
	if !ok {
		return "", domain.NewNotFoundError("template")
	}
	var contact *crm.Contact
	if contactID != "" {
		c, ok := w.state.ContactByID(contactID)
		if !ok {
			return "", domain.NewNotFoundError("contact")
		}
		contact = &c
	}
	return crm.FillTemplate(template, contact, w.user.AgentFirstName()), nil
}

func validCategory(c crm.TemplateCategory) bool {
	switch c {
	case crm.CategoryFollowUp, crm.CategoryListing, crm.CategoryRelationship, crm.CategoryNurture:
		return true
	}
	return false
}
