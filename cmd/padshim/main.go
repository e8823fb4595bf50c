package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/awesome-gocui/gocui"
	"github.com/gethiox/padshim/internal/pkg/display"
	"github.com/gethiox/padshim/internal/pkg/logger"
	"github.com/gethiox/padshim/internal/pkg/shim"
	"github.com/gethiox/padshim/internal/pkg/sink"
	"github.com/gethiox/padshim/internal/pkg/web"
	"github.com/logrusorgru/aurora"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// handleSigs cancels the context on first signal, second one terminates immediately
func handleSigs(wg *sync.WaitGroup, sigs <-chan os.Signal, exited <-chan struct{}, cancel func(), g *gocui.Gui) {
	defer wg.Done()
	var counter int
	for {
		select {
		case <-exited:
			return
		case sig := <-sigs:
			if counter > 0 {
				fmt.Println("Dirty exit")
				os.Exit(1)
			}
			log.Info(fmt.Sprintf("signal received: %v", sig), logger.Debug)
			cancel()
			if g != nil {
				g.Close()
			}
			counter++
		}
	}
}

func runUI(enabled bool, sigs chan os.Signal) *gocui.Gui {
	if !enabled {
		return nil
	}

	g, err := GetCli()
	if err != nil {
		panic(err)
	}

	go func() {
		err := g.MainLoop()
		if err != nil && err != gocui.ErrQuit {
			panic(err)
		}
		select {
		case sigs <- syscall.SIGINT: // pretend that we received signal when exited from gui
		default:
		}
	}()

	go func() {
		for {
			g.Update(Layout)
			time.Sleep(uiRefreshRate)
		}
	}()

	time.Sleep(time.Millisecond * 500) // waiting for view init
	return g
}

// printLogs writes log entries until logger.Messages is closed
func printLogs(w io.Writer, done chan<- struct{}) {
	defer close(done)

	if *silent {
		for range logger.Messages {
		}
		return
	}

	au := aurora.NewAurora(!*nocolor)
	level := effectiveLogLevel(*logLevel)
	for data := range logger.Messages {
		msg, err := unpack(data)
		if err != nil {
			fmt.Fprintf(w, "%s\n", string(data))
			continue
		}
		m := prepareString(msg, au, -1, level)
		if m != "" {
			fmt.Fprintf(w, "%s\n", m)
		}
	}
}

// effectiveLogLevel converts user facing verbosity into the most verbose logger level that is shown
func effectiveLogLevel(verbosity int) int {
	if verbosity >= 3 {
		return logger.DebugLvl
	}
	if verbosity < 0 {
		verbosity = 0
	}
	return logger.InfoLvl + verbosity
}

func openStream(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, nil, fmt.Errorf("opening stream output failed: %w", err)
	}
	return f, f.Close, nil
}

// overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	configPath = pflag.StringP("config", "c", defaultConfigPath, "configuration file, generated when missing")
	grab       = pflag.Bool("grab", false, "grab selected device for exclusive usage")
	ui         = pflag.Bool("ui", false, "engage terminal ui")
	force256   = pflag.Bool("256", false, "force 256 color mode")
	nocolor    = pflag.Bool("nocolor", false, "disable color")
	logLevel   = pflag.Int("loglevel", 0,
		"logging level, each level enables additional information class (0-3)\n"+
			"0: general info (device connection status, parameter changes)\n"+
			"1: raw device events\n"+
			"2: published signal values\n"+
			"3: debug",
	)
	silent     = pflag.Bool("silent", false, "no output logging")
	streamPath = pflag.String("stream", "", "write signal values as \"name value\" lines into given file, \"-\" for stdout")
	list       = pflag.Bool("list", false, "print available input devices and exit")
	printVer   = pflag.Bool("version", false, "print version and exit")
)

func main() {
	pflag.Parse()

	if *printVer {
		fmt.Println(version)
		return
	}

	if *force256 {
		os.Setenv("TERM", "xterm-256color")
	}

	if *list {
		err := listDevices(os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	err := createConfigIfNeeded(*configPath)
	if err != nil {
		panic(err)
	}

	var cfg = LoadConfig(*configPath)
	log.Info(fmt.Sprintf("padshim config: %+v", cfg), logger.Debug)

	params := shim.NewConfig()
	err = applyLiveParams(cfg, params)
	if err != nil {
		panic(err)
	}

	var sigs = make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	useUI := *ui && !*silent
	g := runUI(useUI, sigs)

	// this wait-group has to be propagated everywhere where usual logging appear
	wg := sync.WaitGroup{}

	var exited = make(chan struct{})
	wg.Add(1)
	go handleSigs(&wg, sigs, exited, cancel, g)

	memory := sink.NewMemory()
	sinks := sink.Multi{memory}
	if !*silent {
		sinks = append(sinks, sink.NewLog())
	}

	if *streamPath != "" {
		w, closeStream, err := openStream(*streamPath)
		if err != nil {
			panic(err)
		}
		defer closeStream()
		sinks = append(sinks, sink.NewStream(w, *silent))
	}

	changes, err := detectConfigChanges(ctx, *configPath)
	if err != nil {
		log.Info(fmt.Sprintf("config hot reload disabled: %v", err), logger.Warning)
	} else {
		wg.Add(1)
		go reloadConfig(&wg, *configPath, changes, params)
	}

	if cfg.Web.Enabled {
		server := web.NewServer(cfg.Web.Address, memory, params, cfg.Web.SyncInterval, *silent)
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := server.Run(ctx)
			if err != nil {
				log.Info(err.Error(), zap.String("address", cfg.Web.Address), logger.Error)
			}
		}()
	}

	wg.Add(1)
	dd := GenerateDisplayData(ctx, &wg, cfg.Screen, memory)
	dd1, dd2 := FanOut(dd)

	if cfg.Screen.Enabled {
		wg.Add(1)
		go display.HandleDisplay(&wg, cfg.Screen, dd1)
	} else {
		go func() {
			for range dd1 {
			}
		}()
	}

	var logsDone = make(chan struct{})
	if useUI {
		go func() {
			logView(g, !*nocolor, effectiveLogLevel(*logLevel))
			close(logsDone)
		}()
		go signalsView(g, !*nocolor, memory)
		go lcdView(g, dd2)
	} else {
		go func() {
			for range dd2 {
			}
		}()

		var out io.Writer = os.Stdout
		if *streamPath == "-" {
			out = os.Stderr
		}
		go printLogs(out, logsDone)
	}

	log.Info("padshim started",
		zap.String("filter", params.Filter().String()),
		zap.Float64("deadzone", params.Deadzone()),
		logger.Info,
	)

	manager := shim.NewManager(shim.EvdevEnumerator{}, params, sinks, shim.Options{
		ReconnectInterval: cfg.Shim.ReconnectInterval,
		PollTimeout:       cfg.Shim.PollTimeout,
		Grab:              cfg.Shim.Grab || *grab,
		NoLogs:            *silent,
	})
	manager.Run(ctx)

	log.Info("waiting...", logger.Debug)
	signal.Stop(sigs)
	close(exited)

	// closing logger can be safely invoked only when all internally running goroutines (that may emit logs) are done
	wg.Wait()
	close(logger.Messages)
	<-logsDone
}
