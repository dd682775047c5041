// Command xmlmatch is a small demo CLI: it parses an XML file, runs an
// XPath against it, and optionally evaluates a matching-item rule
// (loaded from the XML file named by -rule) against a flat set of
// key=value parameters given by -params. Grounded on the teacher's
// own cmd-line-flags-plus-logrus main.go shape.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arkcall/xmlmatch/dom"
	"github.com/arkcall/xmlmatch/internal/logging"
	"github.com/arkcall/xmlmatch/match"
	"github.com/arkcall/xmlmatch/param"
	"github.com/arkcall/xmlmatch/sax"
	"github.com/arkcall/xmlmatch/xpath"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		xmlFile   = flag.String("xml", "", "path to an XML file to parse")
		xpathText = flag.String("xpath", "", "XPath expression to evaluate against the parsed document")
		ruleXML   = flag.String("rule", "", "path to a matching-item XML rule file")
		params    = flag.String("params", "", "comma-separated name=value pairs to match the rule against")
		verbose   = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	log := logging.Default()
	if *verbose {
		log.SetLevel(log.GetLevel() + 1)
	}

	if *xmlFile == "" {
		fmt.Fprintln(os.Stderr, "usage: xmlmatch -xml <file> [-xpath <expr>] [-rule <file> -params k=v,...]")
		os.Exit(2)
	}

	doc, err := parseFile(*xmlFile, log)
	if err != nil {
		log.WithError(err).Fatal("parse failed")
	}

	if *xpathText != "" {
		runXPath(log, doc, *xpathText)
	}

	if *ruleXML != "" {
		runRule(log, *ruleXML, *params)
	}
}

func parseFile(path string, log *logrus.Logger) (*dom.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := dom.NewDocument()
	if err := doc.Parse(data, sax.WithLogger(log)); err != nil {
		return nil, err
	}
	return doc, nil
}

func runXPath(log *logrus.Logger, doc *dom.Document, expr string) {
	if doc.Root == nil {
		log.Error("document has no root element")
		return
	}
	path := xpath.Compile(expr, 0)
	if path.Status() != xpath.NoError {
		log.WithField("status", path.Status()).Errorf("xpath compile error: %s", path.Error())
		return
	}
	res, st := path.Eval(doc.Root, xpath.FindAny)
	if st != xpath.NoError {
		log.WithField("status", st).Error("xpath eval error")
		return
	}
	for _, el := range res.Elements {
		fmt.Println("element:", el.Tag())
	}
	for _, t := range res.Texts {
		fmt.Println("text:", t)
	}
	for _, a := range res.Attrs {
		fmt.Printf("attr: %s=%s\n", a.Name, a.Value)
	}
}

func runRule(log *logrus.Logger, rulePath, paramsArg string) {
	data, err := os.ReadFile(rulePath)
	if err != nil {
		log.WithError(err).Fatal("reading rule file")
	}
	m, err := match.LoadFromXMLString(match.LoadOptions{Log: log}, string(data))
	if err != nil {
		log.WithError(err).Fatal("loading rule")
	}

	p := param.New()
	for _, pair := range strings.Split(paramsArg, ",") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			p.Add(kv[0], kv[1])
		}
	}

	ctx := match.NewContext(time.Now(), log)
	if matched := m.Match(ctx, p); matched != nil {
		fmt.Println("match: yes")
	} else {
		fmt.Println("match: no")
	}
}
