package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gompdf/repaginate/internal/pagination"
	"github.com/gompdf/repaginate/pkg/api"
)

// VariantDefaults converts the defaults section into a role table. Roles not
// listed keep their standard variants.
func (d *DocumentConfig) VariantDefaults() (pagination.Defaults, error) {
	out := pagination.StandardDefaults()
	for name, variants := range d.Defaults {
		role, ok := pagination.ParseRole(name)
		if !ok {
			return nil, fmt.Errorf("unknown role %q in defaults", name)
		}
		set, err := pagination.ParseVariantSet(variants)
		if err != nil {
			return nil, fmt.Errorf("defaults for %s: %w", name, err)
		}
		out[role] = set
	}
	return out, nil
}

// PaginatorOptions builds paginator options from the document section.
func (d *DocumentConfig) PaginatorOptions(log *zap.Logger) (api.Options, error) {
	o := api.DefaultOptions()

	size, ok := pagination.PageSizes[d.PageSize]
	if !ok {
		return o, fmt.Errorf("unknown page size %q", d.PageSize)
	}
	o.PageSize = size
	o.PageOrientation = api.PageOrientation(d.Orientation)
	o.PageCapacity = d.PageCapacity
	o.Locale = d.Locale
	o.FractionDigits = d.FractionDigits
	o.Strict = d.Strict
	o.Vocabulary = d.Vocabulary
	o.ResourcePaths = append([]string(nil), d.ResourcePaths...)
	o.Author = d.Author
	o.RenderBackgrounds = d.RenderBackgrounds
	o.RenderBorders = d.RenderBorders
	o.DebugDrawBoxes = d.DebugBoxes
	if d.Timeout > 0 {
		o.Timeout = d.Timeout
	}
	if log != nil {
		o.Logger = log
	}

	var err error
	if o.Progress, err = pagination.ParseProgress(d.Progress); err != nil {
		return o, err
	}
	if o.Defaults, err = d.VariantDefaults(); err != nil {
		return o, err
	}
	if d.UserStylesheet != "" {
		data, err := os.ReadFile(d.UserStylesheet)
		if err != nil {
			return o, fmt.Errorf("unable to read user stylesheet: %w", err)
		}
		o.UserStylesheet = string(data)
	}
	return o, nil
}
