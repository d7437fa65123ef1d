package projects

import (
	"context"
	"encoding/json"
	"fmt"

	"projectadmin/internal/archive"
	"projectadmin/internal/reconcile"
	"projectadmin/internal/storage"
)

// RepairOutcome describes one project repair.
type RepairOutcome struct {
	Project  storage.Project
	Changes  []reconcile.Change
	Archived []string
}

// RepairProject repairs the stored record with the given id. When apply is
// false it only reports what would change. Otherwise every changed value is
// archived before the record is written, and an archive failure leaves the
// record untouched. A nil archiver behaves like archive.Disabled.
func RepairProject(ctx context.Context, store storage.Store, archiver archive.Archiver, r reconcile.Reconciler, id string, opts reconcile.RepairOptions, apply bool) (RepairOutcome, error) {
	project, err := store.GetProject(ctx, id)
	if err != nil {
		return RepairOutcome{}, err
	}
	doc, err := parseDocument(project.Data)
	if err != nil {
		return RepairOutcome{}, fmt.Errorf("project %s: %w", project.ID, err)
	}

	repaired, changes := r.Repair(doc, opts)
	out := RepairOutcome{Project: project, Changes: changes}
	if !apply || len(changes) == 0 {
		return out, nil
	}

	if archiver == nil {
		archiver = archive.Disabled()
	}
	for _, c := range changes {
		res, err := archiver.Archive(ctx, archive.Entry{
			ProjectID: project.ID,
			Field:     c.Key,
			Reason:    "repair",
			Data:      c.Before,
		})
		if err != nil {
			return out, fmt.Errorf("archive %s: %w", c.Key, err)
		}
		out.Archived = append(out.Archived, res.Location)
	}

	data, err := json.Marshal(repaired)
	if err != nil {
		return out, fmt.Errorf("encode document: %w", err)
	}
	out.Project, err = store.UpdateProjectData(ctx, project.ID, data)
	if err != nil {
		return out, err
	}
	return out, nil
}
