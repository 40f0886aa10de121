// gocda 调用 PMD CPD 检测重复代码，并统计 source 目录中每个文件
// 与 destination 目录之间的重复行数和比例。
//
// 命令出错时错误信息写到 stderr，进程以退出码 1 结束。
package main

import (
	"fmt"
	"os"

	"gocda/cmd"
)

// version 由发布流程通过 -ldflags "-X main.version=vX.Y.Z" 写入。
var version = "dev"

func main() {
	if err := cmd.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "gocda: %v\n", err)
		os.Exit(1)
	}
}
