package dataset_test

const regionsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"Region": "Región de Atacama"},
      "geometry": {"type": "Polygon", "coordinates": [[[-71.5,-29.5],[-68.5,-29.5],[-68.5,-26],[-71.5,-26],[-71.5,-29.5]]]}
    },
    {
      "type": "Feature",
      "properties": {"Region": "RM"},
      "geometry": {"type": "MultiPolygon", "coordinates": [[[[-71.7,-34.3],[-69.8,-34.3],[-69.8,-32.9],[-71.7,-32.9],[-71.7,-34.3]]]]}
    }
  ]
}`

const depositsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"ID": 101, "NOMBRE INSTALACION": "Tranque Uno", "NOMBRE_EMPRESA_O_PRODUCTOR_MINERO": "Minera Norte", "NOMBRE_FAENA": "Faena A", "TIPO_DEPOSITO": "Tranque", "RECURSO ": "Cobre", "REGION ": "III"},
      "geometry": {"type": "Point", "coordinates": [-70.33, -27.37]}
    },
    {
      "type": "Feature",
      "properties": {"ID": 102, "NOMBRE INSTALACION": "Embalse Dos", "NOMBRE_EMPRESA_O_PRODUCTOR_MINERO": "Minera Norte", "NOMBRE_FAENA": "Faena B", "TIPO_DEPOSITO": "Embalse", "RECURSO ": "Oro", "REGION ": "III "},
      "geometry": {"type": "Point", "coordinates": [-70.2, -27.2]}
    },
    {
      "type": "Feature",
      "properties": {"ID": 201, "NOMBRE INSTALACION": "Relave Sur", "NOMBRE_EMPRESA_O_PRODUCTOR_MINERO": "Andina SpA", "NOMBRE_FAENA": "Faena C", "TIPO_DEPOSITO": "Tranque", "RECURSO ": "Cobre", "REGION ": "RM"},
      "geometry": {"type": "Point", "coordinates": [-70.6, -33.5]}
    },
    {
      "type": "Feature",
      "properties": {"ID": 301, "NOMBRE INSTALACION": "Relave Austral", "NOMBRE_EMPRESA_O_PRODUCTOR_MINERO": "Austral Ltda", "NOMBRE_FAENA": "Faena D", "TIPO_DEPOSITO": "Embalse", "RECURSO ": "Carbón", "REGION ": "XII"},
      "geometry": {"type": "Point", "coordinates": [-70.9, -53.1]}
    }
  ]
}`
