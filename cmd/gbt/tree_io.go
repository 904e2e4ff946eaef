package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/colinsongf/Gradient-Boosted-Tree/tree"
	treejson "github.com/colinsongf/Gradient-Boosted-Tree/tree/json"
	"github.com/colinsongf/Gradient-Boosted-Tree/tree/redisstore"
	redis "gopkg.in/redis.v5"
)

const redisTreePrefix = "gbt:tree"

func outputTree(outputPath string, t *tree.Tree) error {
	if strings.HasPrefix(outputPath, "redis://") {
		store, id, err := redisTreeStore(outputPath)
		if err != nil {
			return err
		}
		return store.Store(context.Background(), id, t)
	}
	var f *os.File
	var err error
	if outputPath == "" {
		f = os.Stdout
	} else {
		f, err = os.Create(outputPath)
		if err != nil {
			return err
		}
	}
	defer f.Close()
	return treejson.WriteTree(t, f)
}

func loadTree(inputPath string) (*tree.Tree, error) {
	if strings.HasPrefix(inputPath, "redis://") {
		store, id, err := redisTreeStore(inputPath)
		if err != nil {
			return nil, err
		}
		t, err := store.Load(context.Background(), id)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("no tree stored at %s", inputPath)
		}
		return t, nil
	}
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("opening tree at %s: %v", inputPath, err)
	}
	defer f.Close()
	return treejson.ReadTree(f)
}

// redisTreeStore parses a redis://host:port/key URL into a store on
// the addressed redis server and the key under it.
func redisTreeStore(url string) (*redisstore.Store, string, error) {
	location := strings.TrimPrefix(url, "redis://")
	parts := strings.SplitN(location, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, "", fmt.Errorf("invalid redis tree URL %s: expected redis://host:port/key", url)
	}
	rc := redis.NewClient(&redis.Options{Addr: parts[0]})
	return redisstore.New(rc, redisTreePrefix), parts[1], nil
}
