package obstacle

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "obstacle")
