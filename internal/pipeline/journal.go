package pipeline

import (
	"os"

	"github.com/go-git/go-billy/v5"

	"github.com/biovault/hdf5pkg/internal/cache"
	"github.com/biovault/hdf5pkg/internal/codes"
	"github.com/biovault/hdf5pkg/internal/stage"
)

// Journal returns the run recorded by this pipeline, nil before the first state
func (p *Pipeline) Journal() *cache.Run {
	return p.run
}

func (p *Pipeline) reach(state string) {
	if p.run == nil {
		p.run = cache.NewRun(p.PackageID())
	}

	p.run.Reached(state)
	p.printer.Debugf("State: %s", state)
	p.save()
}

func (p *Pipeline) fail(err error) error {
	if p.run == nil {
		p.run = cache.NewRun(p.PackageID())
	}

	p.run.Reached(StateFailed)
	p.run.Error = err.Error()
	p.save()

	return err
}

func (p *Pipeline) save() {
	if p.cache == nil {
		return
	}

	if err := p.cache.SaveRun(p.run); err != nil {
		p.printer.Warnf("%v", err)
	}
}

// existingDir opens a dependency folder recorded in a table
func existingDir(dir string) (billy.Filesystem, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, &codes.MissingArtifactError{Paths: []string{dir}, Hint: "Re-run hdf5pkg deps to refresh the dependency tables"}
	}

	return stage.Dir(dir)
}
