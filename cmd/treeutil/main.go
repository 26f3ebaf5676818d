// treeutil is a small CLI over the expression-graph kernel: it can print,
// optimize, and round-trip binary-serialized trees, and put/get shapes in
// the on-disk cache.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Irvise/libfive/cache"
	"github.com/Irvise/libfive/config"
	"github.com/Irvise/libfive/oraclesvc"
	"github.com/Irvise/libfive/tree"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: treeutil <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  print                 read a binary tree from stdin, print its S-expression\n")
		fmt.Fprintf(os.Stderr, "  optimize              read a binary tree from stdin, write the optimized form to stdout\n")
		fmt.Fprintf(os.Stderr, "  deserialize           read a binary tree from stdin, validate it, report its size\n")
		fmt.Fprintf(os.Stderr, "  cache put             read a binary tree from stdin, store it, print its content hash\n")
		fmt.Fprintf(os.Stderr, "  cache get <hash>      write the stored tree for <hash> to stdout as binary\n")
		fmt.Fprintf(os.Stderr, "  oracle describe <tag> print a registered plugin's parameter schema\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  treeutil print < shape.bin\n")
		fmt.Fprintf(os.Stderr, "  treeutil optimize < shape.bin > optimized.bin\n")
		fmt.Fprintf(os.Stderr, "  treeutil cache put < shape.bin\n")
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "print":
		err = runPrint()
	case "optimize":
		err = runOptimize()
	case "deserialize":
		err = runDeserialize()
	case "cache":
		err = runCache(args[1:])
	case "oracle":
		err = runOracle(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "treeutil: unknown command %q\n", args[0])
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "treeutil: %v\n", err)
		os.Exit(1)
	}
}

func readTree(r io.Reader) (tree.Handle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return tree.Handle{}, fmt.Errorf("reading input: %w", err)
	}
	h, err := tree.Deserialize(data)
	if err != nil {
		return tree.Handle{}, fmt.Errorf("decoding tree: %w", err)
	}
	return h, nil
}

func runPrint() error {
	h, err := readTree(os.Stdin)
	if err != nil {
		return err
	}
	defer h.Drop()
	fmt.Println(tree.Print(h))
	return nil
}

func runOptimize() error {
	h, err := readTree(os.Stdin)
	if err != nil {
		return err
	}
	defer h.Drop()

	optimized := tree.Optimized(h)
	defer optimized.Drop()

	_, err = os.Stdout.Write(tree.Serialize(optimized))
	return err
}

func runDeserialize() error {
	h, err := readTree(os.Stdin)
	if err != nil {
		return err
	}
	defer h.Drop()
	fmt.Printf("ok: %d nodes\n", tree.Size(h))
	return nil
}

func runCache(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("cache: expected a subcommand (put, get)")
	}

	store, err := openCacheStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch args[0] {
	case "put":
		h, err := readTree(os.Stdin)
		if err != nil {
			return err
		}
		defer h.Drop()

		hash, err := store.Put(h)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil

	case "get":
		if len(args) < 2 {
			return fmt.Errorf("cache get: expected a hash argument")
		}
		h, err := store.Get(args[1])
		if err != nil {
			return err
		}
		defer h.Drop()
		_, err = os.Stdout.Write(tree.Serialize(h))
		return err

	default:
		return fmt.Errorf("cache: unknown subcommand %q", args[0])
	}
}

// openCacheStore opens the cache described by kernel.toml in the current
// directory, falling back to the default location if no config is present.
func openCacheStore() (*cache.Store, error) {
	if cfg, err := config.Load("."); err == nil {
		log.Printf("treeutil: using cache at %s", cfg.Cache.Path)
		return cache.Open(cfg.Cache.Path)
	}
	return cache.OpenDefault()
}

func runOracle(args []string) error {
	if len(args) == 0 || args[0] != "describe" {
		return fmt.Errorf("oracle: expected \"describe <tag>\"")
	}
	if len(args) < 2 {
		return fmt.Errorf("oracle describe: expected a plugin tag argument")
	}
	tag := args[1]

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading kernel.toml: %w", err)
	}

	svc := oraclesvc.New()
	for pluginTag, plugin := range cfg.Plugins {
		log.Printf("treeutil: registering plugin %q at %s", pluginTag, plugin.Address)
		if _, err := svc.Register(pluginTag, pluginTag, nil); err != nil {
			return fmt.Errorf("registering plugin %q: %w", pluginTag, err)
		}
	}

	text, err := svc.DescribeText(tag)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}
