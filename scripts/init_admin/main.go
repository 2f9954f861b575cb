package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/hahnmechanical/site/internal/config"
	"github.com/hahnmechanical/site/internal/db"
)

func main() {
	cfg := config.Load()

	username := flag.String("username", cfg.AdminUserName, "管理员用户名")
	password := flag.String("password", cfg.AdminPassword, "管理员密码")
	databasePath := flag.String("db", cfg.DatabasePath, "SQLite 数据库路径")
	flag.Parse()

	if strings.TrimSpace(*username) == "" || strings.TrimSpace(*password) == "" {
		fmt.Fprintln(os.Stderr, "用户名与密码不能为空，可通过 -username/-password 或 ADMIN_USERNAME/ADMIN_PASSWORD 提供")
		os.Exit(2)
	}

	// 初始化数据库
	if err := db.Init(*databasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	// 已存在的账号会被重置为新密码
	if err := db.EnsureUser(*username, *password); err != nil {
		log.Fatal("创建管理员失败:", err)
	}

	fmt.Printf("管理员 %s 已就绪\n", strings.TrimSpace(*username))
}
