package postgres

import "context"

// PurgeSpeakers removes every speaker and its link rows. It is meant for test
// setup and teardown: a foreign-key failure from rows still referenced
// elsewhere is ignored and the rows are left for a later purge.
func PurgeSpeakers(ctx context.Context, em *EntityManager) error {
	return purge(ctx, em, speakerSessionsLink.Name, speakerTable.Name)
}

// PurgeSessions removes every session and the link rows that reference it,
// with the same best-effort semantics as PurgeSpeakers.
func PurgeSessions(ctx context.Context, em *EntityManager) error {
	return purge(ctx, em, speakerSessionsLink.Name, sessionTable.Name)
}

func purge(ctx context.Context, em *EntityManager, tables ...string) error {
	for _, t := range tables {
		if err := em.DeleteAll(ctx, t); err != nil {
			if isForeignKeyViolation(err) {
				em.Logger.DebugContext(ctx, "purge skipped referenced rows", "table", t, "err", err)
				return nil
			}
			return err
		}
	}
	return nil
}
