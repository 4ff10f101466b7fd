package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expansion-prep/internal/model"
)

var miniCase = map[string]string{
	"Dict_Period":       "Period\n2030\n",
	"Dict_Scenario":     "Scenario\nsc01\n",
	"Dict_Stage":        "Stage\nst1\n",
	"Dict_LoadLevel":    "LoadLevel\nn01\nn02\n",
	"Dict_Generation":   "Generator\nG1\nES1\n",
	"Dict_Technology":   "Technology\nGas\nHydro\n",
	"Dict_Storage":      "Storage\nDaily\n",
	"Dict_Node":         "Node\nN1\nN2\n",
	"Dict_Zone":         "Zone\nZ1\n",
	"Dict_Area":         "Area\nA1\n",
	"Dict_Region":       "Region\nR1\n",
	"Dict_Circuit":      "Circuit\neac1\n",
	"Dict_Line":         "LineType\nAC\n",
	"Dict_NodeToZone":   "Node,Zone\nN1,Z1\nN2,Z1\n",
	"Dict_ZoneToArea":   "Zone,Area\nZ1,A1\n",
	"Dict_AreaToRegion": "Area,Region\nA1,R1\n",

	"Data_Option": "Index,IndBinGenInvest,IndBinGenRetirement,IndBinNetInvest,IndBinGenOperat,IndBinSingleNode,IndBinGenRamps,IndBinGenMinTime,IndBinLineCommit,IndBinNetLosses\n" +
		"0,1,0,1,1,0,1,1,2,1\n",
	"Data_Parameter": "Index,ENSCost,CO2Cost,EconomicBaseYear,AnnualDiscountRate,UpReserveActivation,DwReserveActivation,MinRatioDwUp,MaxRatioDwUp,SBase,ReferenceNode,TimeStep\n" +
		"0,10000,50,2020,0.04,0.25,0.3,0,1,100,N1,1\n",
	"Data_Period":   "Period,Weight\n2030,1\n",
	"Data_Scenario": "Period,Scenario,Probability\n2030,sc01,1\n",
	"Data_Stage":    "Stage,Weight\nst1,1\n",
	"Data_Duration": "LoadLevel,Duration,Stage\nn01,1,st1\nn02,1,st1\n",
	"Data_Demand":   "Period,Scenario,LoadLevel,N1,N2\n2030,sc01,n01,300,100\n2030,sc01,n02,,120\n",
	"Data_Generation": "Generator,Node,Technology,MustRun,BinaryCommitment,MaximumPower,MinimumPower,MaximumStorage,MaximumCharge,StorageType,Efficiency\n" +
		"G1,N1,Gas,No,Yes,400,100,,,,\n" +
		"ES1,N2,Hydro,,n,100,,1,100,Daily,0.8\n",
	"Data_Network":      "InitialNode,FinalNode,Circuit,LineType,Switching,Reactance,TTC,SecurityFactor,InitialPeriod,FinalPeriod\nN1,N2,eac1,AC,No,0.01,500,1,2020,2050\n",
	"Data_NodeLocation": "Node,Latitude,Longitude\nN1,40.4,-3.7\nN2,41.4,2.2\n",
	"Data_EnergyInflows": "Period,Scenario,LoadLevel,ES1\n2030,sc01,n01,5\n2030,sc01,n02,5\n",
}

func writeCase(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "mini")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for rel, body := range files {
		name := filepath.Join(dir, "oT_"+rel+"_mini.csv")
		require.NoError(t, os.WriteFile(name, []byte(body), 0o644))
	}
	return root
}

func TestLoadCase(t *testing.T) {
	root := writeCase(t, miniCase)
	c, err := LoadCase(root, "mini")
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, []int{2030}, c.Dict.Periods)
	assert.Equal(t, []string{"n01", "n02"}, c.Dict.LoadLevels)
	assert.Equal(t, []model.Pair{{From: "N1", To: "Z1"}, {From: "N2", To: "Z1"}}, c.Dict.NodeToZone)

	assert.Equal(t, model.Binary, c.Options.GenInvest)
	assert.Equal(t, model.NoDecision, c.Options.LineCommit)
	assert.True(t, c.Options.NetLosses)
	assert.False(t, c.Options.SingleNode)

	assert.Equal(t, "N1", c.Scalars.ReferenceNode)
	assert.Equal(t, 1, c.Scalars.TimeStep)
	assert.Equal(t, 10000.0, c.Scalars.ENSCost)

	assert.Equal(t, 0.0, c.Demand.Value(model.StepKey{Period: 2030, Scenario: "sc01", LoadLevel: "n02"}, "N1"))
	assert.Equal(t, 120.0, c.Demand.Value(model.StepKey{Period: 2030, Scenario: "sc01", LoadLevel: "n02"}, "N2"))
	assert.Equal(t, 0, c.Inertia.Len())
	assert.Equal(t, 2, c.EnergyInflows.Len())

	require.Len(t, c.Units, 2)
	assert.True(t, c.Units[0].BinaryCommitment)
	assert.False(t, c.Units[0].MustRun)
	assert.False(t, c.Units[1].BinaryCommitment)
	assert.Equal(t, "Daily", c.Units[1].StorageType)
	assert.Equal(t, 1.0, c.Units[1].MaximumStorage)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, model.LineKey{From: "N1", To: "N2", Circuit: "eac1"}, c.Lines[0].Key)
	assert.Equal(t, 500.0, c.Lines[0].TTC)
	assert.Equal(t, model.Location{Latitude: 41.4, Longitude: 2.2}, c.NodeLocations["N2"])
}

func TestLoadCaseErrors(t *testing.T) {
	t.Run("bad indicator", func(t *testing.T) {
		files := copyFiles(miniCase)
		files["Data_Generation"] = "Generator,Node,MustRun\nG1,N1,Maybe\n"
		_, err := LoadCase(writeCase(t, files), "mini")
		var ie *model.IndicatorError
		require.True(t, errors.As(err, &ie), "got %v", err)
		assert.Equal(t, "MustRun", ie.Column)
		assert.Equal(t, "Maybe", ie.Value)
	})
	t.Run("bad number", func(t *testing.T) {
		files := copyFiles(miniCase)
		files["Data_Demand"] = "Period,Scenario,LoadLevel,N1\n2030,sc01,n01,lots\n"
		_, err := LoadCase(writeCase(t, files), "mini")
		var pe *ParseError
		require.True(t, errors.As(err, &pe), "got %v", err)
		assert.Equal(t, "N1", pe.Column)
		assert.Equal(t, "n01", pe.Row)
	})
	t.Run("missing required table", func(t *testing.T) {
		files := copyFiles(miniCase)
		delete(files, "Data_Network")
		_, err := LoadCase(writeCase(t, files), "mini")
		assert.Error(t, err)
	})
}

func TestListCases(t *testing.T) {
	root := writeCase(t, miniCase)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	names, err := ListCases(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"mini"}, names)
}

func TestCaseCache(t *testing.T) {
	root := writeCase(t, miniCase)
	cache := NewCaseCache(time.Hour)
	defer cache.Close()

	first, err := cache.Load(root, "mini")
	require.NoError(t, err)
	second, err := cache.Load(root, "mini")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())

	var disabled *CaseCache
	c, err := disabled.Load(root, "mini")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestCaseCacheExpiry(t *testing.T) {
	root := writeCase(t, miniCase)
	cache := NewCaseCache(time.Minute)
	defer cache.Close()
	clock := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	first, err := cache.Load(root, "mini")
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	_, ok := cache.Get(GenerateCacheKey(root, "mini"))
	assert.False(t, ok)
	cache.evict()
	assert.Equal(t, 0, cache.Len())

	second, err := cache.Load(root, "mini")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestGenerateCacheKey(t *testing.T) {
	assert.Equal(t, GenerateCacheKey("cases", "9n"), GenerateCacheKey("cases/", "9n"))
	assert.NotEqual(t, GenerateCacheKey("cases", "9n"), GenerateCacheKey("cases", "RTS24"))
	assert.Len(t, GenerateCacheKey("cases", "9n"), 64)
}

func copyFiles(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
