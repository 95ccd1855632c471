// Package rocks adapts an embedded rockyardkv database with column
// families to a small instruction-driven interface.
//
// Usage:
//
//	opts := rocks.NewOptions("/var/lib/cfkv", "users").BuildDefaultOpts()
//	opts.SetDBOpts(func(o *rockyardkv.Options) {
//		o.MergeOperator = &rockyardkv.StringAppendOperator{Delimiter: ","}
//	})
//
//	db, err := rocks.New(opts)
//	if err != nil {
//		return err
//	}
//	h, err := db.Build()
//	if err != nil {
//		return err
//	}
//	defer db.Close(ctx)
//
//	exec := rocks.NewExecutor(h, "users")
//	defer exec.Close()
//
//	if _, err := exec.Exec(ctx, rocks.SaveCf{Key: "k", Value: []byte("v")}); err != nil {
//		return err
//	}
//	out, err := exec.Exec(ctx, rocks.GetCf{Key: "k"})
//
// Engine calls are blocking and run on a bounded worker pool, so Exec can
// be called from many goroutines without stalling them on disk I/O.
//
// Errors are *Error values of kind KindValidate, KindInstance or
// KindExecutor; match them with errors.Is against ErrValidate, ErrInstance
// and ErrExecutor.
package rocks
