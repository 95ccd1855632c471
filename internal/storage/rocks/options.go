package rocks

import (
	"github.com/aalhour/rockyardkv"
)

// Options holds the configuration needed to open a database with a single
// column family.
//
// Path and ColumnFamilyName are required. The db and cf tuning objects are
// required too, but start out unset: call BuildDefaultOpts to populate them
// with engine defaults before customising them with SetDBOpts/SetCFOpts.
type Options struct {
	path   string
	cfName string
	dbOpts *rockyardkv.Options
	cfOpts *rockyardkv.ColumnFamilyOptions

	// cfTuned is set once SetCFOpts has changed the cf defaults.
	cfTuned bool
}

// NewOptions creates options for the database at path using the column
// family cfName. Tuning objects are left unset.
func NewOptions(path, cfName string) *Options {
	return &Options{
		path:   path,
		cfName: cfName,
	}
}

// BuildDefaultOpts populates both tuning objects with engine defaults.
// The db defaults create the database when it does not exist yet.
func (o *Options) BuildDefaultOpts() *Options {
	dbOpts := rockyardkv.DefaultOptions()
	dbOpts.CreateIfMissing = true
	o.dbOpts = dbOpts

	cfOpts := rockyardkv.DefaultColumnFamilyOptions()
	o.cfOpts = &cfOpts
	o.cfTuned = false
	return o
}

// SetDBOpts applies fn to the db tuning object.
//
// fn is only called if the db tuning object is already populated. When it
// is unset the call does nothing and the object stays unset.
func (o *Options) SetDBOpts(fn func(*rockyardkv.Options)) *Options {
	if o.dbOpts != nil {
		fn(o.dbOpts)
	}
	return o
}

// SetCFOpts applies fn to the cf tuning object, under the same rule as
// SetDBOpts.
//
// The cf tuning only takes effect when Build creates the column family.
// It is not applied to "default" or to a family that already exists on
// disk; Build logs a warning when tuning was set for such a family.
func (o *Options) SetCFOpts(fn func(*rockyardkv.ColumnFamilyOptions)) *Options {
	if o.cfOpts != nil {
		fn(o.cfOpts)
		o.cfTuned = true
	}
	return o
}

// Validate checks, in order: path, column family name, cf tuning, db
// tuning. It returns a KindValidate error for the first failing check.
func (o *Options) Validate() error {
	if o.path == "" {
		return validateError("db path is empty")
	}

	if o.cfName == "" {
		return validateError("column family name is empty")
	}

	if o.cfOpts == nil {
		return validateError("missing cf options")
	}

	if o.dbOpts == nil {
		return validateError("missing db options")
	}

	return nil
}

// Path returns the database directory.
func (o *Options) Path() string { return o.path }

// ColumnFamilyName returns the configured column family.
func (o *Options) ColumnFamilyName() string { return o.cfName }

// DBOpts returns the db tuning object, or nil if unset.
func (o *Options) DBOpts() *rockyardkv.Options { return o.dbOpts }

// CFOpts returns the cf tuning object, or nil if unset.
func (o *Options) CFOpts() *rockyardkv.ColumnFamilyOptions { return o.cfOpts }

// clone returns a copy that shares nothing mutable with o at the top
// level. Interface-valued fields inside the tuning objects (comparators,
// merge operators, loggers) are shared.
func (o *Options) clone() Options {
	c := Options{path: o.path, cfName: o.cfName, cfTuned: o.cfTuned}
	if o.dbOpts != nil {
		db := *o.dbOpts
		c.dbOpts = &db
	}
	if o.cfOpts != nil {
		cf := *o.cfOpts
		c.cfOpts = &cf
	}
	return c
}
