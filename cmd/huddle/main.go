package main

import (
	"net/http"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/huddlechat/huddle/api"
	"github.com/huddlechat/huddle/auth"
	"github.com/huddlechat/huddle/config"
	"github.com/huddlechat/huddle/engine"
	"github.com/huddlechat/huddle/globals"
	"github.com/huddlechat/huddle/persistence"
	"github.com/huddlechat/huddle/storage"
	"github.com/huddlechat/huddle/ws"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
)

var (
	configPath = pflag.StringP("config", "c", "", "path to config file or directory")
	addr       = pflag.String("addr", "localhost:3000", "service address (including port)")
	sslCert    = pflag.String("ssl-cert", "", "SSL cert (optional)")
	sslKey     = pflag.String("ssl-key", "", "SSL key (optional)")
)

func main() {
	flagSet := config.GetFlagSet()
	pflag.CommandLine.AddFlagSet(flagSet)
	pflag.Parse()

	globalConfig, err := config.ReadConfiguration(*configPath, flagSet)
	if err != nil {
		panic(err)
	}
	if globalConfig.LogLevel != "" {
		globals.AppLogger.SetLevel(hclog.LevelFromString(globalConfig.LogLevel))
	}

	backend, err := persistence.NewBackend(globalConfig)
	if err != nil {
		panic(err)
	}
	defer backend.Close()

	users, err := persistence.LoadUsers(backend)
	if err != nil {
		panic(err)
	}
	groups, err := persistence.LoadGroups(backend)
	if err != nil {
		panic(err)
	}

	channelDB := globalConfig.PersistenceConfig.ChannelDB
	if channelDB != ":memory:" && !filepath.IsAbs(channelDB) {
		channelDB = filepath.Join(globalConfig.PersistenceConfig.DataDir, channelDB)
	}
	channelLog, err := persistence.NewChannelLog(channelDB)
	if err != nil {
		panic(err)
	}
	defer channelLog.Close()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		channelLog.Close()
		globals.AppLogger.Error("interrupted!")
		os.Exit(1)
	}()

	// periodic compaction of the channel/message store
	cronRunner := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err = cronRunner.AddFunc(globalConfig.PersistenceConfig.ShrinkSpec, func() {
		if err := channelLog.Shrink(); err != nil {
			globals.AppLogger.Error("could not shrink channel db", "error", err)
		}
	})
	if err != nil {
		panic(err)
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	eng := engine.New(users, groups, channelLog, globals.AppLogger.Named("engine"))
	relay := ws.NewRelay(channelLog, globals.AppLogger.Named("relay"))
	go relay.Run()

	blobs, err := storage.NewDiskStorage(globalConfig)
	if err != nil {
		panic(err)
	}
	server := api.NewServer(eng, relay, blobs, auth.NewStoreAuthenticator(users), globals.AppLogger.Named("api"))

	router := server.Routes()
	// uploaded images are served as plain static files
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(globalConfig.UploadConfig.Dir))))
	http.Handle("/", router)

	globals.AppLogger.Info("listening", "addr", *addr)
	if *sslCert != "" && *sslKey != "" {
		err = http.ListenAndServeTLS(*addr, *sslCert, *sslKey, nil)
	} else {
		err = http.ListenAndServe(*addr, nil)
	}
	globals.AppLogger.Error("stopped listening", "error", err)
}
