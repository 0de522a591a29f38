package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"pricedash/adapters/excel"
)

// Config controls synthetic sales generation.
type Config struct {
	Rows int
	Seed int64
}

// DefaultConfig matches the size of the Ames training set.
func DefaultConfig() Config {
	return Config{Rows: 1460, Seed: 42}
}

// Columns produced by Generate, in order.
var Columns = []string{
	"Id", "MSSubClass", "MSZoning", "LotArea", "Neighborhood", "BldgType", "HouseStyle",
	"OverallQual", "OverallCond", "YearBuilt", "YearRemodAdd", "ExterQual", "KitchenQual",
	"TotalBsmtSF", "1stFlrSF", "2ndFlrSF", "GrLivArea", "FullBath", "HalfBath",
	"BedroomAbvGr", "TotRmsAbvGrd", "Fireplaces", "GarageCars", "CentralAir", "PavedDrive",
	"MoSold", "YrSold", "SaleCondition", "SalePrice",
}

// neighborhood base prices and sales weights, loosely following Ames.
var profiles = map[string]struct {
	base   float64
	weight int
}{
	"NAmes": {146000, 225}, "CollgCr": {198000, 150}, "OldTown": {128000, 113},
	"Edwards": {128000, 100}, "Somerst": {225000, 86}, "Gilbert": {192000, 79},
	"NridgHt": {316000, 77}, "Sawyer": {136000, 74}, "NWAmes": {189000, 73},
	"SawyerW": {186000, 59}, "BrkSide": {124000, 58}, "Crawfor": {210000, 51},
	"Mitchel": {156000, 49}, "NoRidge": {335000, 41}, "Timber": {242000, 38},
	"IDOTRR": {100000, 37}, "ClearCr": {212000, 28}, "StoneBr": {310000, 25},
	"SWISU": {142000, 25}, "MeadowV": {98000, 17}, "Blmngtn": {194000, 17},
	"BrDale": {104000, 16}, "Veenker": {238000, 11}, "NPkVill": {142000, 9},
	"Blueste": {137000, 2},
}

// Generate builds a reproducible table of sales where price rises with
// quality, living area and the neighborhood premium.
func Generate(cfg Config) (*Dataset, error) {
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("rows must be > 0")
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	names := make([]string, 0, len(profiles))
	total := 0
	for name, p := range profiles {
		names = append(names, name)
		total += p.weight
	}
	sort.Strings(names)
	pick := func() string {
		n := rng.Intn(total)
		for _, name := range names {
			if n -= profiles[name].weight; n < 0 {
				return name
			}
		}
		return names[len(names)-1]
	}

	quality := []string{"Fa", "TA", "Gd", "Ex"}
	styles := []string{"1Story", "2Story", "1.5Fin", "SLvl"}

	rows := make([]excel.RawRowData, cfg.Rows)
	for i := range rows {
		hood := pick()
		base := profiles[hood].base
		premium := base / 180000

		qual := clampInt(int(math.Round(5.5+premium*1.2+rng.NormFloat64()*1.2)), 1, 10)
		cond := clampInt(int(math.Round(5+rng.NormFloat64()*0.9)), 1, 9)
		built := clampInt(int(1900+premium*60+rng.NormFloat64()*18), 1872, 2010)
		remod := clampInt(built+rng.Intn(30), built, 2010)
		style := styles[rng.Intn(len(styles))]

		first := math.Round(800 + qual2(qual)*90 + rng.Float64()*500)
		second := 0.0
		if style == "2Story" || style == "1.5Fin" {
			second = math.Round(first * (0.5 + rng.Float64()*0.5))
		}
		living := first + second
		bsmt := math.Round(first * (0.7 + rng.Float64()*0.4))
		lot := math.Round(7000 + rng.ExpFloat64()*3500)
		garage := clampInt(int(math.Round(1+float64(qual)/4+rng.NormFloat64()*0.5)), 0, 4)
		beds := clampInt(int(living/600)+rng.Intn(2), 1, 6)
		rooms := clampInt(beds+2+rng.Intn(3), 3, 14)
		full := clampInt(int(living/1000)+1, 1, 3)
		half := rng.Intn(2)
		fire := clampInt(rng.Intn(3)-boolInt(qual < 5), 0, 3)

		price := base*0.35 +
			float64(qual)*14500 +
			living*52 +
			bsmt*22 +
			float64(garage)*7000 +
			float64(built-1950)*320 +
			float64(fire)*3500
		price *= math.Exp(rng.NormFloat64() * 0.09)
		price = math.Max(34900, math.Round(price))

		kq := quality[clampInt((qual-2)/2, 0, 3)]
		eq := quality[clampInt((qual-3)/2, 0, 3)]

		rows[i] = excel.RawRowData{
			"Id":            strconv.Itoa(i + 1),
			"MSSubClass":    strconv.Itoa(subClass(style)),
			"MSZoning":      "RL",
			"LotArea":       fToStr(lot, 0),
			"Neighborhood":  hood,
			"BldgType":      "1Fam",
			"HouseStyle":    style,
			"OverallQual":   strconv.Itoa(qual),
			"OverallCond":   strconv.Itoa(cond),
			"YearBuilt":     strconv.Itoa(built),
			"YearRemodAdd":  strconv.Itoa(remod),
			"ExterQual":     eq,
			"KitchenQual":   kq,
			"TotalBsmtSF":   fToStr(bsmt, 0),
			"1stFlrSF":      fToStr(first, 0),
			"2ndFlrSF":      fToStr(second, 0),
			"GrLivArea":     fToStr(living, 0),
			"FullBath":      strconv.Itoa(full),
			"HalfBath":      strconv.Itoa(half),
			"BedroomAbvGr":  strconv.Itoa(beds),
			"TotRmsAbvGrd":  strconv.Itoa(rooms),
			"Fireplaces":    strconv.Itoa(fire),
			"GarageCars":    strconv.Itoa(garage),
			"CentralAir":    yesNo(built > 1940 || rng.Float64() < 0.5),
			"PavedDrive":    yesNo(rng.Float64() < 0.92),
			"MoSold":        strconv.Itoa(1 + rng.Intn(12)),
			"YrSold":        strconv.Itoa(2006 + rng.Intn(5)),
			"SaleCondition": "Normal",
			"SalePrice":     fToStr(price, 0),
		}
	}

	return &Dataset{Headers: append([]string(nil), Columns...), Rows: rows}, nil
}

// WriteCSV writes the table with a header row.
func WriteCSV(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(ds.Headers); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := w.Write(ds.record(row)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteXLSX writes the table to the first sheet of a workbook.
func WriteXLSX(path string, ds *Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, h := range ds.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range ds.Rows {
		for c, v := range ds.record(row) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

func (d *Dataset) record(row excel.RawRowData) []string {
	out := make([]string, len(d.Headers))
	for i, h := range d.Headers {
		out[i] = row[h]
	}
	return out
}

func subClass(style string) int {
	switch style {
	case "2Story":
		return 60
	case "1.5Fin":
		return 50
	case "SLvl":
		return 80
	default:
		return 20
	}
}

func qual2(q int) float64 { return float64(q * q) / 10 }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

func fToStr(x float64, decimals int) string {
	return strconv.FormatFloat(x, 'f', decimals, 64)
}
