package main

import (
	_ "embed"
	"log"
	"os"
)

//go:embed appconfig/appconfig.yaml
var appConfig []byte

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("执行失败: %v", err)
	}
}
