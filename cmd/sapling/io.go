package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/dataset/csv"
	datasetjson "github.com/pbanos/sapling/dataset/json"
	"github.com/pbanos/sapling/dataset/mongodataset"
	"github.com/pbanos/sapling/dataset/sqldataset"
	"github.com/pbanos/sapling/dataset/sqldataset/pgadapter"
	"github.com/pbanos/sapling/dataset/sqldataset/sqlite3adapter"
	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/feature/names"
	"github.com/pbanos/sapling/feature/yaml"
	"github.com/pbanos/sapling/tree"
	"github.com/pbanos/sapling/tree/json"
	"github.com/pbanos/sapling/tree/redisstore"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/redis.v5"
)

const (
	directoryPrefix = "dir:"
	redisScheme     = "redis"
)

const (
	datasetHelp  = "a CSV (.csv), JSON (.json) or SQLite3 (.db) file, a PostgreSQL (postgres://) or MongoDB (mongodb://) URL, or dir:DIR/NAME for a dataset stored as DIR/NAME/names and DIR/NAME/data"
	metadataHelp = "path to a YAML (.yml, .yaml) or names file with metadata describing the features on the dataset (required unless the dataset is given as dir:DIR/NAME)"
	treeHelp     = "path to a JSON file or redis://ADDR/PREFIX location"
)

/*
dataLocation holds where a dataset is read from or written to, and how many
DB connections may be used on it
*/
type dataLocation struct {
	*rootCmdConfig
	location   string
	maxDBConns int
}

// readSchema reads a schema from a YAML file if the path has a YAML
// extension, and from a names file otherwise
func readSchema(path string) (*feature.Schema, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return yaml.ReadSchemaFromFile(path)
	}
	return names.ReadSchemaFromFile(path)
}

func isDirectory(location string) bool {
	return strings.HasPrefix(location, directoryPrefix)
}

// splitDirectory takes a dir:DIR/NAME location and returns DIR and NAME
func splitDirectory(location string) (string, string, error) {
	path := filepath.Clean(strings.TrimPrefix(location, directoryPrefix))
	dir, name := filepath.Split(path)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", "", fmt.Errorf("invalid dataset location %q: expected dir:DIR/NAME", location)
	}
	if dir == "" {
		dir = "."
	}
	return dir, name, nil
}

/*
loadDataset returns the schema read from the metadata path and the partition
read from the location. When the metadata path is empty and the location is
a dataset directory, the schema is read from its names file.
*/
func (dl *dataLocation) loadDataset(ctx context.Context, metadata string) (*feature.Schema, *dataset.Partition, error) {
	if metadata == "" {
		if !isDirectory(dl.location) {
			return nil, nil, fmt.Errorf("required metadata flag was not set")
		}
		dir, name, err := splitDirectory(dl.location)
		if err != nil {
			return nil, nil, err
		}
		dl.Logf("Reading dataset %s from directory %s...", name, dir)
		return csv.ReadDirectory(dir, name)
	}
	dl.Logf("Reading features from metadata at %s...", metadata)
	schema, err := readSchema(metadata)
	if err != nil {
		return nil, nil, err
	}
	p, err := dl.loadPartition(ctx, schema)
	if err != nil {
		return nil, nil, err
	}
	return schema, p, nil
}

func (dl *dataLocation) loadPartition(ctx context.Context, schema *feature.Schema) (*dataset.Partition, error) {
	loc := dl.location
	switch {
	case loc == "":
		dl.Logf("Reading dataset from STDIN...")
		return csv.ReadPartition(os.Stdin, schema, csv.DefaultOptions)
	case isDirectory(loc):
		dir, name, err := splitDirectory(loc)
		if err != nil {
			return nil, err
		}
		dl.Logf("Reading dataset %s from directory %s...", name, dir)
		return csv.ReadPartitionFromFile(filepath.Join(dir, name, "data"), schema, csv.DataOptions)
	case isPostgreSQL(loc), strings.HasSuffix(loc, ".db"):
		a, err := dl.sqlAdapter()
		if err != nil {
			return nil, err
		}
		defer a.DB().Close()
		return sqldataset.Load(ctx, a, schema)
	case strings.HasPrefix(loc, "mongodb://"):
		mds, closer, err := dl.mongoDataset(ctx, schema)
		if err != nil {
			return nil, err
		}
		defer closer()
		return mds.Load(ctx)
	case strings.HasSuffix(loc, ".json"):
		dl.Logf("Opening %s to read dataset in JSON...", loc)
		f, err := os.Open(loc)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return datasetjson.ReadPartition(ctx, f, schema)
	}
	dl.Logf("Opening %s to read dataset...", loc)
	return csv.ReadPartitionFromFile(loc, schema, csv.DefaultOptions)
}

func (dl *dataLocation) writePartition(ctx context.Context, p *dataset.Partition) error {
	loc := dl.location
	switch {
	case loc == "":
		dl.Logf("Using STDOUT to dump dataset...")
		return csv.WritePartition(ctx, os.Stdout, p, csv.DefaultOptions)
	case isDirectory(loc):
		dir, name, err := splitDirectory(loc)
		if err != nil {
			return err
		}
		err = os.MkdirAll(filepath.Join(dir, name), 0o755)
		if err != nil {
			return err
		}
		return writeCSVFile(ctx, filepath.Join(dir, name, "data"), p, csv.DataOptions)
	case isPostgreSQL(loc), strings.HasSuffix(loc, ".db"):
		a, err := dl.sqlAdapter()
		if err != nil {
			return err
		}
		defer a.DB().Close()
		n, err := sqldataset.Write(ctx, a, p)
		dl.Logf("%d entries written", n)
		return err
	case strings.HasPrefix(loc, "mongodb://"):
		mds, closer, err := dl.mongoDataset(ctx, p.Schema())
		if err != nil {
			return err
		}
		defer closer()
		n, err := mds.Write(ctx, p.Entries())
		dl.Logf("%d entries written", n)
		return err
	case strings.HasSuffix(loc, ".json"):
		dl.Logf("Creating %s to dump dataset in JSON...", loc)
		f, err := os.Create(loc)
		if err != nil {
			return err
		}
		err = datasetjson.WritePartition(ctx, f, p)
		if err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	dl.Logf("Creating %s to dump dataset...", loc)
	return writeCSVFile(ctx, loc, p, csv.DefaultOptions)
}

func writeCSVFile(ctx context.Context, path string, p *dataset.Partition, opts csv.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = csv.WritePartition(ctx, f, p, opts)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isPostgreSQL(location string) bool {
	return strings.HasPrefix(location, "postgresql://") || strings.HasPrefix(location, "postgres://")
}

func (dl *dataLocation) sqlAdapter() (sqldataset.Adapter, error) {
	if isPostgreSQL(dl.location) {
		dl.Logf("Creating PostgreSQL adapter for url %s...", dl.location)
		return pgadapter.New(dl.location)
	}
	dl.Logf("Creating SQLite3 adapter for file %s...", dl.location)
	return sqlite3adapter.New(dl.location, dl.maxDBConns)
}

func (dl *dataLocation) mongoDataset(ctx context.Context, schema *feature.Schema) (*mongodataset.Dataset, func(), error) {
	dl.Logf("Connecting to MongoDB at %s...", dl.location)
	session, err := mgo.Dial(dl.location)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to %s: %v", dl.location, err)
	}
	mds, err := mongodataset.Open(ctx, session, schema)
	if err != nil {
		session.Close()
		return nil, nil, err
	}
	return mds, session.Close, nil
}

// parseRedisLocation takes a redis://ADDR/PREFIX location and returns ADDR
// and PREFIX
func parseRedisLocation(location string) (string, string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("parsing redis location %q: %v", location, err)
	}
	if u.Scheme != redisScheme || u.Host == "" {
		return "", "", fmt.Errorf("invalid redis location %q: expected redis://ADDR/PREFIX", location)
	}
	prefix := strings.Trim(u.Path, "/")
	if prefix == "" {
		return "", "", fmt.Errorf("invalid redis location %q: no key prefix", location)
	}
	return u.Host, prefix, nil
}

func isRedis(location string) bool {
	return strings.HasPrefix(location, redisScheme+"://")
}

func redisStore(location string, schema *feature.Schema) (*redisstore.Store, *redis.Client, error) {
	addr, prefix, err := parseRedisLocation(location)
	if err != nil {
		return nil, nil, err
	}
	rc := redis.NewClient(&redis.Options{Addr: addr})
	return redisstore.New(rc, prefix, json.NewNodeEncodeDecoder(schema)), rc, nil
}

func (rcc *rootCmdConfig) loadTree(ctx context.Context, location string, schema *feature.Schema) (*tree.Tree, error) {
	if isRedis(location) {
		rcc.Logf("Loading tree from %s...", location)
		store, rc, err := redisStore(location, schema)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return store.Load(ctx, schema)
	}
	rcc.Logf("Reading tree from %s...", location)
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("reading tree in JSON from %s: %v", location, err)
	}
	defer f.Close()
	t, err := json.ReadJSONTree(ctx, schema, json.NewNodeEncodeDecoder(schema), f)
	if err != nil {
		err = fmt.Errorf("parsing tree in JSON from %s: %v", location, err)
	}
	return t, err
}

func (rcc *rootCmdConfig) saveTree(ctx context.Context, location string, t *tree.Tree) error {
	if isRedis(location) {
		rcc.Logf("Saving tree on %s...", location)
		store, rc, err := redisStore(location, t.Schema())
		if err != nil {
			return err
		}
		defer rc.Close()
		return store.Save(ctx, t)
	}
	ned := json.NewNodeEncodeDecoder(t.Schema())
	if location == "" {
		return json.WriteJSONTree(ctx, t, ned, os.Stdout)
	}
	f, err := os.Create(location)
	if err != nil {
		return err
	}
	err = json.WriteJSONTree(ctx, t, ned, f)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
