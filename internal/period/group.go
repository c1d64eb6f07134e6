package period

import (
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/taitdna2/cholimex-display-checker/internal/config"
	"github.com/taitdna2/cholimex-display-checker/internal/model"
)

// Sentinel conditions surfaced while grouping uploaded snapshots.
var (
	// ErrAmbiguousProgram: the file's registration levels resolve to
	// more than one program and the filename does not disambiguate.
	ErrAmbiguousProgram = eris.New("period: ambiguous program")
	// ErrUnknownProgram: no program could be determined at all.
	ErrUnknownProgram = eris.New("period: unknown program")
	// ErrInsufficientPeriods: fewer than two periods for a program.
	// Normal "not enough data" condition, not a user-facing failure.
	ErrInsufficientPeriods = eris.New("period: fewer than two periods")
)

// File is one loaded snapshot annotated for grouping.
type File struct {
	Name     string
	Snapshot model.Snapshot
	Key      Key
	Program  string
}

// Group holds every loaded period of one program, ascending by Key.
type Group struct {
	Program string
	Files   []File
}

// Selection is the up-to-three periods of a group that participate in
// reconciliation: Current (T2, latest), Prior (T1, second latest) and
// Earliest (T0) only when three or more periods exist.
type Selection struct {
	Prior    model.Snapshot
	Current  model.Snapshot
	Earliest *model.Snapshot
}

// DeriveProgram determines a snapshot's program code. Content wins:
// the distinct alias-resolved registration levels must name exactly
// one configured program. Otherwise the filename is scanned for a
// known program code as a fallback.
func DeriveProgram(cfg *config.Config, snap model.Snapshot, filename string) (string, error) {
	resolved := map[string]bool{}
	for _, r := range snap.Records {
		if cfg.KnownProgram(r.Level) {
			resolved[cfg.ResolveProgram(r.Level)] = true
		}
	}

	switch len(resolved) {
	case 1:
		for p := range resolved {
			return p, nil
		}
	case 0:
		if p, ok := programFromFilename(cfg, filename); ok {
			return p, nil
		}
		return "", eris.Wrapf(ErrUnknownProgram, "file %q", filename)
	}

	// Content is ambiguous; only an unambiguous filename match saves it.
	if p, ok := programFromFilename(cfg, filename); ok {
		return p, nil
	}
	codes := make([]string, 0, len(resolved))
	for p := range resolved {
		codes = append(codes, p)
	}
	sort.Strings(codes)
	return "", eris.Wrapf(ErrAmbiguousProgram, "file %q resolves to %s", filename, strings.Join(codes, ", "))
}

// programFromFilename matches configured program codes against the
// file name, longest code first so KOS_XXTG_BS wins over KOS_XXTG.
func programFromFilename(cfg *config.Config, filename string) (string, bool) {
	upper := strings.ToUpper(filename)
	codes := make([]string, 0, len(cfg.BaseMinimums))
	for p := range cfg.BaseMinimums {
		codes = append(codes, p)
	}
	sort.Slice(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) > len(codes[j])
		}
		return codes[i] < codes[j]
	})
	for _, p := range codes {
		if strings.Contains(upper, strings.ToUpper(p)) {
			return p, true
		}
	}
	return "", false
}

// GroupFiles partitions loaded snapshots into per-program groups,
// ordered ascending by period key. Files whose program cannot be
// determined are returned as errors keyed by filename; they never
// abort the rest.
func GroupFiles(cfg *config.Config, snaps map[string]model.Snapshot, now time.Time) ([]Group, map[string]error) {
	byProgram := map[string][]File{}
	failed := map[string]error{}

	names := make([]string, 0, len(snaps))
	for name := range snaps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		snap := snaps[name]
		program, err := DeriveProgram(cfg, snap, name)
		if err != nil {
			failed[name] = err
			zap.L().Warn("period: excluding file", zap.String("file", name), zap.Error(err))
			continue
		}
		f := File{
			Name:     name,
			Snapshot: snap,
			Key:      Parse(snap.PeriodLabel, now),
			Program:  program,
		}
		byProgram[program] = append(byProgram[program], f)
	}

	programs := make([]string, 0, len(byProgram))
	for p := range byProgram {
		programs = append(programs, p)
	}
	sort.Strings(programs)

	groups := make([]Group, 0, len(programs))
	for _, p := range programs {
		files := byProgram[p]
		sort.Slice(files, func(i, j int) bool {
			return files[i].Key.Less(files[j].Key)
		})
		groups = append(groups, Group{Program: p, Files: files})
	}
	return groups, failed
}

// Select picks the periods that participate in reconciliation: the two
// most recent become T1/T2, and with three or more periods the
// earliest retained is carried forward as T0 for the new-enrollee
// lookback. Groups with a single period return ErrInsufficientPeriods.
func (g Group) Select() (Selection, error) {
	if len(g.Files) < 2 {
		return Selection{}, eris.Wrapf(ErrInsufficientPeriods, "program %s has %d", g.Program, len(g.Files))
	}
	sel := Selection{
		Prior:   g.Files[len(g.Files)-2].Snapshot,
		Current: g.Files[len(g.Files)-1].Snapshot,
	}
	if len(g.Files) >= 3 {
		earliest := g.Files[0].Snapshot
		sel.Earliest = &earliest
	}
	return sel, nil
}
