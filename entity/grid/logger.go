package grid

import "github.com/sirupsen/logrus"

// log 栅格模块的日志记录器
var log = logrus.WithField("module", "grid")
