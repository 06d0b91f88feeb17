package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/spf13/viper"

	"nitro/markdown-render/internal"
)

type config struct {
	Render struct {
		Engine  string `mapstructure:"engine"`
		Policy  string `mapstructure:"policy"`
		Anchors bool   `mapstructure:"anchors"`
	} `mapstructure:"render"`
	Ignore struct {
		Link []string `mapstructure:"link"`
		File []string `mapstructure:"file"`
	} `mapstructure:"ignore"`
	Output struct {
		Directory string `mapstructure:"directory"`
		Extension string `mapstructure:"extension"`
	} `mapstructure:"output"`
	Provider struct {
		Web struct {
			Endpoints []string            `mapstructure:"endpoints"`
			Header    map[string][]string `mapstructure:"header"`
			Overwrite []struct {
				Endpoint string              `mapstructure:"endpoint"`
				Header   map[string][]string `mapstructure:"header"`
			} `mapstructure:"overwrite"`
		} `mapstructure:"web"`
	} `mapstructure:"provider"`
	Watch struct {
		Debounce time.Duration `mapstructure:"debounce"`
	} `mapstructure:"watch"`
}

func main() {
	var params struct {
		Path   string `help:"Path to be processed" required:"true" arg:"true" type:"string"`
		Config string `help:"Path to the configuration file." short:"c" type:"string"`
		Watch  bool   `help:"Render the files again as they change." short:"w"`
	}
	kong.Parse(&params, kong.Name("markdown-render"))

	client, err := configClient(params.Config)
	if err != nil {
		handleError("fail to configure the client: %s", err.Error())
	}
	client.Path = params.Path

	if params.Watch {
		if err := client.Watch(executionContext()); err != nil {
			handleError("fail at client execution: %s", err.Error())
		}
		return
	}

	hasFailures, err := client.Run(executionContext())
	if err != nil {
		handleError("fail at client execution: %s", err.Error())
	}
	if hasFailures {
		os.Exit(1)
	}
}

func configClient(path string) (internal.Client, error) {
	var viper = viper.New()
	viper.SetConfigType("yaml")
	viper.SetDefault("render.engine", "builtin")
	viper.SetDefault("render.policy", "denylist")
	viper.SetDefault("render.anchors", false)
	viper.SetDefault("output.extension", ".html")
	viper.SetDefault("watch.debounce", 250*time.Millisecond)
	viper.SetEnvPrefix("markdown_render")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		if err := readConfig(viper, path); err != nil {
			return internal.Client{}, err
		}
	}

	var cfg config
	if err := viper.Unmarshal(&cfg); err != nil {
		return internal.Client{}, fmt.Errorf("fail to unmarshal the configuration: %w", err)
	}

	web := internal.ClientProviderWeb{
		Endpoints:       cfg.Provider.Web.Endpoints,
		Config:          cfg.Provider.Web.Header,
		ConfigOverwrite: make(map[string]http.Header, len(cfg.Provider.Web.Overwrite)),
	}
	for _, overwrite := range cfg.Provider.Web.Overwrite {
		web.ConfigOverwrite[overwrite.Endpoint] = overwrite.Header
	}

	return internal.Client{
		Render: internal.ClientRender{
			Engine:  cfg.Render.Engine,
			Policy:  cfg.Render.Policy,
			Anchors: cfg.Render.Anchors,
		},
		Ignore: internal.ClientIgnore{
			File: cfg.Ignore.File,
			Link: cfg.Ignore.Link,
		},
		Output: internal.ClientOutput{
			Directory: cfg.Output.Directory,
			Extension: cfg.Output.Extension,
		},
		Provider: internal.ClientProvider{
			Web: web,
		},
		Watcher: internal.ClientWatcher{
			Debounce: cfg.Watch.Debounce,
		},
	}, nil
}

func readConfig(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fail to open the config file: %w", err)
	}
	defer f.Close()

	if err := v.ReadConfig(f); err != nil {
		return fmt.Errorf("fail to read the configuration file: %w", err)
	}
	return nil
}

func handleError(mask string, params ...interface{}) {
	fmt.Printf(mask+"\n", params...)
	os.Exit(1)
}

func executionContext() context.Context {
	ctx, ctxCancel := context.WithCancel(context.Background())
	go func() {
		chSignal := make(chan os.Signal, 1)
		signal.Notify(chSignal, os.Interrupt)
		<-chSignal
		ctxCancel()
	}()
	return ctx
}
