package playdownloadservice

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"play-extract/pkg/config"
	"play-extract/pkg/db"
	"play-extract/pkg/store"
)

// sinkSet holds the opened sinks and what must be closed afterwards
type sinkSet struct {
	file    *store.FileStore
	sinks   []store.Sink
	records []db.RecordStore
	closers []func() error
}

func (s *sinkSet) addRecordStore(name string, rs db.RecordStore) {
	s.sinks = append(s.sinks, store.Sink{Name: name, Saver: rs})
	s.records = append(s.records, rs)
	s.closers = append(s.closers, rs.Close)
}

func (s *sinkSet) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// openSinks connects every sink enabled in cfg. The file sink is always first.
func openSinks(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sinkSet, error) {
	set := &sinkSet{file: store.NewFileStore(cfg.Output.Dir, cfg.Output.Ext)}
	set.sinks = append(set.sinks, store.Sink{Name: "file", Saver: set.file})

	connect := func(name string, rs db.RecordStore) error {
		if err := rs.Connect(ctx); err != nil {
			return fmt.Errorf("connect %s: %w", name, err)
		}
		set.addRecordStore(name, rs)
		logger.Info("sink connected", zap.String("sink", name))
		return nil
	}

	if cfg.SQLite.Enabled {
		if err := connect("sqlite", db.NewSQLiteClient(cfg.SQLite.Path)); err != nil {
			return nil, closeOnErr(set, err)
		}
	}

	if cfg.Postgres.Enabled {
		pg := db.NewPostgresClient(db.PostgresConfig{
			DSN:          cfg.Postgres.DSN,
			AutoMigrate:  cfg.Postgres.AutoMigrate,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
		})
		if err := connect("postgres", pg); err != nil {
			return nil, closeOnErr(set, err)
		}
	}

	if cfg.Supabase.Enabled {
		sb := db.NewSupabaseClient(db.SupabaseConfig{
			ConnectionString: cfg.Supabase.ConnectionString,
			SupabaseURL:      cfg.Supabase.URL,
			SupabaseKey:      cfg.Supabase.Key,
			Password:         cfg.Supabase.Password,
			AutoMigrate:      cfg.Supabase.AutoMigrate,
		})
		if err := connect("supabase", sb); err != nil {
			return nil, closeOnErr(set, err)
		}
	}

	if cfg.Mongo.Enabled {
		mc := db.NewClient(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err := connect("mongo", mc); err != nil {
			_ = mc.Close()
			return nil, closeOnErr(set, err)
		}
	}

	if cfg.ObjectStore.Enabled {
		obj, err := store.NewObjectStore(ctx, store.ObjectStoreConfig{
			Endpoint:        cfg.ObjectStore.Endpoint,
			AccessKeyID:     cfg.ObjectStore.AccessKeyID,
			SecretAccessKey: cfg.ObjectStore.SecretAccessKey,
			UseSSL:          cfg.ObjectStore.UseSSL,
			Bucket:          cfg.ObjectStore.Bucket,
			Prefix:          cfg.ObjectStore.Prefix,
			Ext:             cfg.Output.Ext,
		})
		if err != nil {
			return nil, closeOnErr(set, fmt.Errorf("connect object store: %w", err))
		}
		set.sinks = append(set.sinks, store.Sink{Name: "object_store", Saver: obj})
		logger.Info("sink connected", zap.String("sink", "object_store"))
	}

	return set, nil
}

func closeOnErr(set *sinkSet, err error) error {
	if cerr := set.close(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}
