package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goforj/godump"

	"github.com/xplshn/gbfc/pkg/ast"
	"github.com/xplshn/gbfc/pkg/bfvm"
	"github.com/xplshn/gbfc/pkg/cli"
	"github.com/xplshn/gbfc/pkg/codegen"
	"github.com/xplshn/gbfc/pkg/config"
	"github.com/xplshn/gbfc/pkg/lexer"
	"github.com/xplshn/gbfc/pkg/parser"
	"github.com/xplshn/gbfc/pkg/token"
	"github.com/xplshn/gbfc/pkg/util"
)

func main() {
	app := cli.NewApp("gbfc")
	app.Synopsis = "[options] <input.mini>"
	app.Description = "A compiler for the Mini language targeting an 8-bit cell tape machine. All the expressive power of a Turing tarpit, none of the typing."

	var (
		outFile   string
		runNow    bool
		dumpAST   bool
		tempBase  int
		tempLimit int
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "", "Place the output into <file>. Defaults to the input name with a .bf extension.", "file")
	fs.Bool(&runNow, "run", "r", false, "Run the compiled program on the built-in machine instead of writing a file.")
	fs.Bool(&dumpAST, "dump-ast", "d", false, "Dump the syntax tree after constant folding and exit.")
	fs.Int(&tempBase, "temp-base", "", 64, "First tape cell of the temp region; variables live below it.", "cell")
	fs.Int(&tempLimit, "temp-limit", "", 4096, "Tape cell at which temp allocation fails.", "cell")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		cfg.ApplyFlagGroups(warningFlags, featureFlags)

		if tempBase < 1 || tempLimit <= tempBase {
			util.Error(token.Token{FileIndex: -1}, "invalid tape layout: temp-base %d, temp-limit %d", tempBase, tempLimit)
		}
		cfg.TempBase, cfg.TempLimit = tempBase, tempLimit

		if len(inputFiles) != 1 {
			util.Error(token.Token{FileIndex: -1}, "expected exactly one input file, got %d", len(inputFiles))
		}
		path := inputFiles[0]
		content, err := os.ReadFile(path)
		if err != nil {
			util.Error(token.Token{FileIndex: -1}, "could not read file '%s': %v", path, err)
		}
		runeContent := []rune(string(content))
		util.SetSourceFiles([]util.SourceFileRecord{{Name: path, Content: runeContent}})

		tokens := lexer.NewLexer(runeContent, 0, cfg).Tokenize()
		astRoot := parser.NewParser(tokens).Parse()
		if cfg.IsFeatureEnabled(config.FeatConstFold) {
			astRoot = ast.FoldConstants(cfg, astRoot)
		}

		if dumpAST {
			godump.Dump(astRoot)
			return nil
		}

		code, err := codegen.NewGenerator(cfg).Generate(astRoot)
		if err != nil {
			var cerr *codegen.Error
			if errors.As(err, &cerr) {
				util.Error(cerr.Tok, "%v", cerr)
			}
			util.Error(token.Token{FileIndex: -1}, "code generation failed: %v", err)
		}

		if runNow {
			m, err := bfvm.New(code)
			if err != nil {
				util.Error(token.Token{FileIndex: -1}, "internal error: emitted invalid code: %v", err)
			}
			out, err := m.Run()
			if err != nil {
				util.Error(token.Token{FileIndex: -1}, "execution failed: %v", err)
			}
			os.Stdout.Write(out)
			return nil
		}

		if outFile == "" {
			outFile = strings.TrimSuffix(path, filepath.Ext(path)) + ".bf"
		}
		if err := os.WriteFile(outFile, []byte(code), 0o644); err != nil {
			util.Error(token.Token{FileIndex: -1}, "could not write '%s': %v", outFile, err)
		}
		fmt.Printf("Wrote %d instructions to '%s'\n", len(code), outFile)
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
