package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/livelamp/pkg/framework"
	"github.com/robotalks/livelamp/pkg/lamp"
)

func init() {
	lamp.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := lamp.NewConfig()
	if err != nil {
		glog.Fatalf("config: %v", err)
	}
	h, err := conf.OpenHardware()
	if err != nil {
		glog.Fatalf("hardware: %v", err)
	}
	app, err := conf.NewApp(h)
	if err != nil {
		glog.Fatalf("setup: %v", err)
	}
	glog.Infof("livelamp %s (%s) serving on %s", conf.Name, app.DeviceID, conf.HTTPAddr)

	if err := app.Run(fx.NewRunner().HandleSignals()); err != nil {
		glog.Errorf("exit: %v", err)
	}
}
