package main

import (
	"fmt"
	"log"
	"os"

	"flowbuf/config"
	"flowbuf/tcp"
	flog "flowbuf/util/log"
)

var banner = `
________                   __          __
/ ____/ /___ _      _____  / /_  __  __/ /
/ /_  / / __ \ | /| / / _ \/ __/ |/_/ / /
/ __/ / / /_/ / |/ |/ /  __/ /_>  <_/ /
/_/   /_/\____/|__/|__/\___/\__/_/|_(_)
                          relay v1.0-SNAPSHOT`

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}

func main() {
	fmt.Println(banner)
	if len(os.Args) > 1 {
		config.LoadConfigs(os.Args[1])
	} else {
		config.LoadConfigs("./flowcatd.conf")
	}
	if !config.Settings.DebugMode {
		flog.SetLevel(flog.LevelError)
	}
	server := tcp.NewServer(":"+config.Settings.Port, config.Settings)
	if err := server.Start(); err != nil {
		panic(err)
	}
}
