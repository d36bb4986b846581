package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jfmengels/elm-language-server/internal/server"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

// Version will be set during the build process using ldflags
var Version = "(dev) v0.0.0"

func main() {
	versionFlag := flag.Bool("version", false, "Print the version of the program")
	logfileFlag := flag.String("logfile", "", "Path to log file (default in the XDG state directory)")
	verboseFlag := flag.Int("verbose", 1, "Log verbosity, 0 logs errors only")
	dumpFlag := flag.String("dump", "", "Print the inferred types of the workspace in this directory and exit")
	configFlag := flag.String("config", "", "JSON configuration file for -dump")
	flag.Parse()

	// Version tag
	if *versionFlag {
		fmt.Printf("elmls version %s\n", Version)
		return
	}

	if *dumpFlag != "" {
		commonlog.Configure(*verboseFlag-1, nil)
		if err := runDump(*dumpFlag, *configFlag, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	// 4 Cores
	runtime.GOMAXPROCS(4)

	// Logging, stdout belongs to the protocol
	logfile := *logfileFlag
	if logfile == "" {
		dir, err := server.StateDir("elmls")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to find a log directory: %v\n", err)
			os.Exit(1)
		}
		logfile = filepath.Join(dir, "elmls.log")
	}
	commonlog.Configure(*verboseFlag, &logfile)
	log := commonlog.GetLogger("elmls")
	log.Infof("starting elmls %s", Version)

	server.Version = Version
	if err := server.NewServer().RunStdio(); err != nil {
		log.Criticalf("server error: %s", err)
		os.Exit(1)
	}
}
